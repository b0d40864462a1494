package config

import (
	"os"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	// Gmail OAuth files, same layout as the legacy tracker.
	GmailCredentialsFile string
	GmailTokenFile       string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// AuditBCC is copied on every receipt sent.
	AuditBCC string

	// Receipt letterhead.
	AcademyName    string
	AcademyAddress string
	AcademyCity    string

	// SNSRegion and OperatorPhone configure the failed-run SMS alert.
	SNSRegion     string
	OperatorPhone string

	// JWTSecret signs the admin bearer tokens for the HTTP surface.
	JWTSecret string

	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Students string
	Invoices string
	Receipts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Students: getEnv("DYNAMO_TABLE_STUDENTS", "pianostudents"),
			Invoices: getEnv("DYNAMO_TABLE_INVOICES", "invoices"),
			Receipts: getEnv("DYNAMO_TABLE_RECEIPTS", "receipts"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "paytrack-receipts"),

		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AuditBCC: getEnv("BCC_EMAIL", ""),

		AcademyName:    getEnv("ACADEMY_NAME", "SJ Piano Academy."),
		AcademyAddress: getEnv("ACADEMY_ADDRESS", "2869 Battleford Rd"),
		AcademyCity:    getEnv("ACADEMY_CITY", "Mississauga,ON L5N 2S6"),

		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),
		OperatorPhone: getEnv("OPERATOR_PHONE", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
