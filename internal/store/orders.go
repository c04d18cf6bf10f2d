package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
)

// ErrStatusMismatch indicates a conditional status transition was rejected.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// Orders encapsulates operations on the orders table.
type Orders struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewOrders creates a new orders store.
func NewOrders(client awsx.DynamoDBAPI, tableName string) *Orders {
	return &Orders{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new order, conditional on the id not existing.
func (s *Orders) Create(ctx context.Context, order Order) error {
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrConditionFailed
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Update overwrites an existing order.
func (s *Orders) Update(ctx context.Context, order Order) error {
	order.UpdatedAt = s.nowFunc()

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Orders) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// FindByTransactionID returns the first order whose linked-transaction set
// contains transactionID, or (nil, nil) if none.
//
// DynamoDB cannot index list membership, so this is a filtered Scan. Order
// volume for a checkout adapter keeps this affordable; revisit if the orders
// table grows past what a single scan page covers comfortably.
func (s *Orders) FindByTransactionID(ctx context.Context, transactionID string) (*Order, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: awsString("contains(transaction_ids, :tid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: transactionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders by transaction id: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// UpdateStatus conditionally updates the order status from expected -> newStatus.
// Returns ErrStatusMismatch if the condition failed.
func (s *Orders) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
