package idempotency

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory stand-in for the idempotency table. It
// understands exactly the expressions Store issues.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	getCalls    int
	updateCalls int
	failNext    error
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func numberAttr(item map[string]types.AttributeValue, name string) int64 {
	if v, ok := item[name].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return n
	}
	return 0
}

func (m *simpleMock) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	k := stringAttr(params.Item, "idempotency_key")
	if k == "" {
		return nil, errors.New("missing key")
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists(idempotency_key)") {
		if existing, ok := m.table[k]; ok {
			now := numberAttr(params.ExpressionAttributeValues, ":now")
			if numberAttr(existing, "expires_at") >= now {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	item, ok := m.table[stringAttr(params.Key, "idempotency_key")]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	k := stringAttr(params.Key, "idempotency_key")
	item, ok := m.table[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		if stringAttr(item, "status") != stringAttr(params.ExpressionAttributeValues, ":expected") {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	updated := map[string]types.AttributeValue{}
	for name, v := range item {
		updated[name] = v
	}
	updated["status"] = params.ExpressionAttributeValues[":status"]
	updated["updated_at"] = params.ExpressionAttributeValues[":ua"]
	for placeholder, attr := range params.ExpressionAttributeNames {
		if strings.HasPrefix(placeholder, "#f") {
			updated[attr] = params.ExpressionAttributeValues[":"+strings.TrimPrefix(placeholder, "#")]
		}
	}
	m.table[k] = updated
	return &dyn.UpdateItemOutput{Attributes: updated}, nil
}

func (m *simpleMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("TransactWriteItems not supported by idempotency mock")
}
