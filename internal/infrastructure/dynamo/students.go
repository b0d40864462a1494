package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sjpiano/paytrack/internal/domain"
)

// StudentRepo provides typed DynamoDB reads for the student directory.
// The directory is owned by the enrollment side; the reconciler never writes it.
type StudentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStudentRepo(client *dynamodb.Client, tableName string) *StudentRepo {
	return &StudentRepo{client: client, tableName: tableName}
}

// ListByEmail returns every directory record stored under the given contact
// email, regardless of case. The exact three-field equality check happens in
// the matcher; this only narrows by the indexed email.
func (r *StudentRepo) ListByEmail(ctx context.Context, email string) ([]domain.Student, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email_lc-index"),
		KeyConditionExpression: aws.String("#e = :v"),
		ExpressionAttributeNames: map[string]string{"#e": "email_lc"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: strings.ToLower(email)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query students by email: %w", err)
	}
	var students []domain.Student
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &students); err != nil {
		return nil, fmt.Errorf("unmarshal students: %w", err)
	}
	return students, nil
}
