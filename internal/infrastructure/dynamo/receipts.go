package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sjpiano/paytrack/internal/domain"
)

// ReceiptRepo records receipt deliveries, keyed by invoice number. Its
// presence check is what makes issuance resumable after a partial failure.
type ReceiptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReceiptRepo(client *dynamodb.Client, tableName string) *ReceiptRepo {
	return &ReceiptRepo{client: client, tableName: tableName}
}

func (r *ReceiptRepo) Get(ctx context.Context, invoiceNumber string) (*domain.ReceiptRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("invoice_number", invoiceNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", invoiceNumber, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("receipt %s: %w", invoiceNumber, domain.ErrNotFound)
	}
	var rec domain.ReceiptRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &rec, nil
}

func (r *ReceiptRepo) PutNew(ctx context.Context, rec *domain.ReceiptRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(invoice_number)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("receipt for %s: %w", rec.InvoiceNumber, domain.ErrConflict)
	}
	return err
}
