package domain

import "time"

// Student is a directory record owned by the external student directory.
// The core only reads these. Amount is the expected monthly fee stored as
// an integer-dollar string (e.g. "200"), matching the legacy collection.
type Student struct {
	StudentID  string    `json:"student_id" dynamodbav:"student_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	ParentName string    `json:"parent_name" dynamodbav:"parent_name"`
	Email      string    `json:"email" dynamodbav:"email"`
	EmailLC    string    `json:"-" dynamodbav:"email_lc"` // lowercase copy, GSI key
	Amount     string    `json:"amount" dynamodbav:"amount"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
