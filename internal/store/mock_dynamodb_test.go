package store

import (
	"errors"
	"strings"
	"sync"

	"context"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the DynamoDB operations the
// stores use. It understands exactly the expressions this package issues and
// nothing more.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	putCalls    int
	updateCalls int
	queryCalls  int
	scanCalls   int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

var pkNames = []string{"transaction_id", "order_id", "cart_id"}

func itemPK(attrs map[string]types.AttributeValue) (string, string) {
	for _, name := range pkNames {
		if v, ok := attrs[name]; ok {
			if s, ok := v.(*types.AttributeValueMemberS); ok {
				return name, s.Value
			}
		}
	}
	return "", ""
}

func (m *mockDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[name]
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	tbl := m.table(*params.TableName)
	pkName, pkValue := itemPK(params.Item)
	if pkName == "" {
		return nil, errors.New("mock: item without known pk")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists("+pkName+")" {
		if _, exists := tbl[pkValue]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	tbl[pkValue] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tbl := m.table(*params.TableName)
	_, pkValue := itemPK(params.Key)
	item, ok := tbl[pkValue]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

// placeholderTargets maps the expression value placeholders this package uses
// to the attribute each one sets.
var placeholderTargets = map[string]string{
	":succeeded": "status",
	":failed":    "status",
	":new":       "status",
	":purchased": "status",
	":oid":       "host_order_id",
	":svea":      "svea",
	":soid":      "svea_order_id",
	":con":       "client_order_number",
	":ua":        "updated_at",
	":pa":        "purchased_at",
	":empty":     "items",
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	tbl := m.table(*params.TableName)
	pkName, pkValue := itemPK(params.Key)
	item, ok := tbl[pkValue]
	if !ok {
		item = map[string]types.AttributeValue{pkName: &types.AttributeValueMemberS{Value: pkValue}}
	}

	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		current, _ := item["status"].(*types.AttributeValueMemberS)
		if current == nil || current.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	for placeholder, attr := range placeholderTargets {
		if v, ok := params.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	tbl[pkValue] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	tbl := m.table(*params.TableName)
	var attr string
	var want types.AttributeValue
	switch *params.IndexName {
	case sveaOrderIDIndex:
		attr, want = "svea_order_id", params.ExpressionAttributeValues[":oid"]
	case clientOrderNumberIndex:
		attr, want = "client_order_number", params.ExpressionAttributeValues[":con"]
	default:
		return nil, errors.New("mock: unknown index " + *params.IndexName)
	}

	out := &dyn.QueryOutput{}
	for _, item := range tbl {
		if attributeEqual(item[attr], want) {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCalls++

	tbl := m.table(*params.TableName)
	out := &dyn.ScanOutput{}
	if params.FilterExpression == nil || !strings.HasPrefix(*params.FilterExpression, "contains(transaction_ids") {
		return nil, errors.New("mock: unsupported scan filter")
	}
	want := params.ExpressionAttributeValues[":tid"].(*types.AttributeValueMemberS).Value
	for _, item := range tbl {
		list, ok := item["transaction_ids"].(*types.AttributeValueMemberL)
		if !ok {
			continue
		}
		for _, member := range list.Value {
			if s, ok := member.(*types.AttributeValueMemberS); ok && s.Value == want {
				out.Items = append(out.Items, item)
				break
			}
		}
	}
	return out, nil
}

func attributeEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	}
	return false
}
