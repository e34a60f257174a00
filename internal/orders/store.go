package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/carpetpalace/storefront-api/internal/aws"
)

var (
	// ErrStatusMismatch is returned by UpdateStatus when the order is not in
	// the expected state.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
	// ErrExists is returned by Put when the order id is already indexed.
	ErrExists = errors.New("order already exists")
)

// Store encapsulates operations on the orders table.
type Store struct {
	client           aws.DynamoDBAPI
	tableName        string
	idempotencyTable string
	nowFunc          func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// WithIdempotencyTable names the idempotency table that
// PutCompletingIdempotency finalises alongside the order.
func (s *Store) WithIdempotencyTable(name string) *Store {
	s.idempotencyTable = name
	return s
}

func (s *Store) stamp(o *Order) {
	now := s.nowFunc().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = StatusPending
	}
}

// Put indexes a new order. Returns ErrExists if order_id is already present.
func (s *Store) Put(ctx context.Context, o *Order) error {
	s.stamp(o)
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return fmt.Errorf("%w: %s", ErrExists, o.OrderID)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// PutCompletingIdempotency atomically:
//   - moves the idempotency record for key from IN_PROGRESS to DONE, storing the session
//   - indexes the order (attribute_not_exists(order_id))
//
// Either both writes apply or neither does.
func (s *Store) PutCompletingIdempotency(ctx context.Context, key, sessionID, sessionURL string, o *Order) error {
	if s.idempotencyTable == "" {
		return errors.New("idempotency table not configured")
	}
	s.stamp(o)
	orderMap, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	transactItems := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName: &s.idempotencyTable,
				Key: map[string]types.AttributeValue{
					"idempotency_key": &types.AttributeValueMemberS{Value: key},
				},
				UpdateExpression:    awsString("SET #s = :status, updated_at = :ua, session_id = :sid, session_url = :url"),
				ConditionExpression: awsString("#s = :expected"),
				ExpressionAttributeNames: map[string]string{
					"#s": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":status":   &types.AttributeValueMemberS{Value: "DONE"},
					":expected": &types.AttributeValueMemberS{Value: "IN_PROGRESS"},
					":ua":       &types.AttributeValueMemberS{Value: o.UpdatedAt.Format(time.RFC3339Nano)},
					":sid":      &types.AttributeValueMemberS{Value: sessionID},
					":url":      &types.AttributeValueMemberS{Value: sessionURL},
				},
			},
		},
		{
			Put: &types.Put{
				TableName:           &s.tableName,
				Item:                orderMap,
				ConditionExpression: awsString("attribute_not_exists(order_id)"),
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("transaction canceled (idempotency record not in progress or order exists): %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
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

// UpdateStatus conditionally updates the order status from expected -> newStatus.
// Returns nil on success, ErrStatusMismatch if condition failed.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var sc *types.ConditionalCheckFailedException
		if errors.As(err, &sc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// IncrementAttempts increases the attempts counter by 1 and returns the new
// value. The order must exist.
func (s *Store) IncrementAttempts(ctx context.Context, orderID string) (int, error) {
	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    awsString("SET attempts = if_not_exists(attempts, :zero) + :inc, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(order_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	n, ok := out.Attributes["attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("increment attempts: attempts missing from response")
	}
	attempts, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return attempts, nil
}

func awsString(s string) *string { return &s }
