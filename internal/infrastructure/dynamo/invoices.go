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

// InvoiceRepo provides typed DynamoDB operations for the invoices table.
// The table is keyed by month_key (student email + fee-paid month), which is
// what lets PutNew enforce the one-invoice-per-month invariant atomically.
type InvoiceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInvoiceRepo(client *dynamodb.Client, tableName string) *InvoiceRepo {
	return &InvoiceRepo{client: client, tableName: tableName}
}

func (r *InvoiceRepo) GetByMonthKey(ctx context.Context, monthKey string) (*domain.Invoice, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("month_key", monthKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", monthKey, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("invoice %s: %w", monthKey, domain.ErrNotFound)
	}
	var inv domain.Invoice
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, fmt.Errorf("unmarshal invoice: %w", err)
	}
	return &inv, nil
}

// PutNew inserts the invoice only when no invoice holds the same month key.
// A lost race surfaces as domain.ErrConflict instead of a silent overwrite.
func (r *InvoiceRepo) PutNew(ctx context.Context, inv *domain.Invoice) error {
	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(month_key)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("invoice for %s: %w", inv.MonthKey, domain.ErrConflict)
	}
	return err
}
