package idempotency

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

	"github.com/carpetpalace/storefront-api/internal/aws"
)

// ErrConditionFailed indicates a conditional status transition did not apply
// because the record was not in the expected state.
var ErrConditionFailed = errors.New("conditional check failed")

// Store encapsulates idempotency operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // default TTL window when creating entries
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// tableName: DynamoDB table name for idempotency entries.
// ttlWindow: how long a key is remembered (e.g. 24*time.Hour)
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists creates an IN_PROGRESS record bound to orderID unless a
// live record already exists for key. An expired record is overwritten.
// Returns (true, nil) when created and (false, nil) when a live record
// exists; the caller should Get it.
func (s *Store) CreateIfNotExists(ctx context.Context, key, orderID string) (bool, error) {
	now := s.nowFunc()
	rec := Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		OrderID:        orderID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(idempotency_key) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		if isConditionalFailure(err) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// Get retrieves an idempotency record by key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            keyAttr(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkDone moves IN_PROGRESS -> DONE and remembers the opened session.
func (s *Store) MarkDone(ctx context.Context, key, sessionID, sessionURL string) error {
	return s.transition(ctx, key, StatusInProgress, StatusDone, map[string]string{
		"session_id":  sessionID,
		"session_url": sessionURL,
	})
}

// MarkFailed moves IN_PROGRESS -> FAILED with a note for operators.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.transition(ctx, key, StatusInProgress, StatusFailed, map[string]string{
		"note": note,
	})
}

// Reclaim moves FAILED -> IN_PROGRESS so a retry can run under the original
// order id. Returns ErrConditionFailed when another request got there first.
func (s *Store) Reclaim(ctx context.Context, key string) error {
	return s.transition(ctx, key, StatusFailed, StatusInProgress, map[string]string{
		"note": "",
	})
}

func (s *Store) transition(ctx context.Context, key, from, to string, fields map[string]string) error {
	now := s.nowFunc()
	expr := "SET #s = :status, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":status":   &types.AttributeValueMemberS{Value: to},
		":expected": &types.AttributeValueMemberS{Value: from},
		":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
	}
	names := map[string]string{"#s": "status"}
	i := 0
	for attr, v := range fields {
		i++
		nameKey, valueKey := fmt.Sprintf("#f%d", i), fmt.Sprintf(":f%d", i)
		expr += fmt.Sprintf(", %s = %s", nameKey, valueKey)
		names[nameKey] = attr
		values[valueKey] = &types.AttributeValueMemberS{Value: v}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       keyAttr(key),
		UpdateExpression:          &expr,
		ConditionExpression:       awsString("#s = :expected"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionalFailure(err) {
			return fmt.Errorf("%s -> %s for %s: %w", from, to, key, ErrConditionFailed)
		}
		return fmt.Errorf("update item (%s -> %s): %w", from, to, err)
	}
	return nil
}

func isConditionalFailure(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: key},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
