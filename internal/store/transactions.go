package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
)

// GSI names on the transactions table.
const (
	sveaOrderIDIndex       = "svea-order-id-index"
	clientOrderNumberIndex = "client-order-number-index"
)

// ErrConditionFailed indicates a conditional write failed (e.g., attribute_not_exists)
var ErrConditionFailed = errors.New("conditional check failed")

// Transactions encapsulates operations on the transactions table.
type Transactions struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewTransactions creates a new transactions store.
func NewTransactions(client awsx.DynamoDBAPI, tableName string) *Transactions {
	return &Transactions{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new transaction. The write is conditional on the primary
// key not existing; a duplicate id returns ErrConditionFailed.
func (s *Transactions) Create(ctx context.Context, tx Transaction) error {
	now := s.nowFunc()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	// mirror the provider fields onto the GSI attributes
	tx.SveaOrderID = tx.Svea.OrderID
	tx.ClientOrderNum = tx.Svea.ClientOrderNumber

	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(transaction_id)"),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrConditionFailed
		}
		return fmt.Errorf("put transaction: %w", err)
	}
	return nil
}

// Get fetches a transaction by id. Returns (nil, nil) if not found.
func (s *Transactions) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var tx Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// FindBySveaOrderID queries the svea_order_id GSI and returns the first match,
// or (nil, nil) if none.
func (s *Transactions) FindBySveaOrderID(ctx context.Context, sveaOrderID int64) (*Transaction, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(sveaOrderIDIndex),
		KeyConditionExpression: awsString("svea_order_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberN{Value: strconv.FormatInt(sveaOrderID, 10)},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query by svea order id: %w", err)
	}
	return firstTransaction(out.Items)
}

// FindByClientOrderNumber queries the client_order_number GSI and returns the
// first match, or (nil, nil) if none.
func (s *Transactions) FindByClientOrderNumber(ctx context.Context, clientOrderNumber string) (*Transaction, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(clientOrderNumberIndex),
		KeyConditionExpression: awsString("client_order_number = :con"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":con": &types.AttributeValueMemberS{Value: clientOrderNumber},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query by client order number: %w", err)
	}
	return firstTransaction(out.Items)
}

func firstTransaction(items []map[string]types.AttributeValue) (*Transaction, error) {
	if len(items) == 0 {
		return nil, nil
	}
	var tx Transaction
	if err := attributevalue.UnmarshalMap(items[0], &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// MarkSucceeded sets the transaction to succeeded with its order link and the
// merged provider sub-object. Callers compute the merge (existing fields
// preserved, new fields overlaid) before calling; writing the same terminal
// state twice is harmless.
func (s *Transactions) MarkSucceeded(ctx context.Context, transactionID, orderID string, svea SveaDetails) error {
	now := s.nowFunc()
	sveaAV, err := attributevalue.Marshal(svea)
	if err != nil {
		return fmt.Errorf("marshal svea details: %w", err)
	}
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
		},
		UpdateExpression: awsString("SET #s = :succeeded, host_order_id = :oid, svea = :svea, svea_order_id = :soid, client_order_number = :con, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":succeeded": &types.AttributeValueMemberS{Value: TxSucceeded},
			":oid":       &types.AttributeValueMemberS{Value: orderID},
			":svea":      sveaAV,
			":soid":      &types.AttributeValueMemberN{Value: strconv.FormatInt(svea.OrderID, 10)},
			":con":       &types.AttributeValueMemberS{Value: svea.ClientOrderNumber},
			":ua":        &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update transaction (mark succeeded): %w", err)
	}
	return nil
}

// MarkFailed sets the transaction status to failed. It never touches any
// order link.
func (s *Transactions) MarkFailed(ctx context.Context, transactionID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: transactionID},
		},
		UpdateExpression: awsString("SET #s = :failed, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: TxFailed},
			":ua":     &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update transaction (mark failed): %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(i int32) *int32    { return &i }
