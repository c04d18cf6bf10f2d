package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
)

// Carts encapsulates operations on the carts table.
type Carts struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewCarts creates a new carts store.
func NewCarts(client awsx.DynamoDBAPI, tableName string) *Carts {
	return &Carts{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Put stores a cart, overwriting any existing record.
func (s *Carts) Put(ctx context.Context, cart Cart) error {
	now := s.nowFunc()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if cart.Status == "" {
		cart.Status = CartActive
	}

	item, err := attributevalue.MarshalMap(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

// Get fetches a cart by cart_id. Returns (nil, nil) if not found.
func (s *Carts) Get(ctx context.Context, cartID string) (*Cart, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Cart
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// MarkPurchased sets the terminal purchased state and clears the items. The
// same terminal state may be written any number of times; callers treat
// failures here as best-effort.
func (s *Carts) MarkPurchased(ctx context.Context, cartID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
		UpdateExpression:         awsString("SET #s = :purchased, purchased_at = :pa, updated_at = :ua, #it = :empty"),
		ExpressionAttributeNames: map[string]string{"#s": "status", "#it": "items"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":purchased": &types.AttributeValueMemberS{Value: CartPurchased},
			":pa":        &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
			":ua":        &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
			":empty":     &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update cart (mark purchased): %w", err)
	}
	return nil
}
