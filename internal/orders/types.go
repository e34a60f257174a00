package orders

import "time"

// Order statuses
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

// Order is the item stored in the Orders DynamoDB table. It indexes the
// human-readable order id to the checkout session that carries it.
type Order struct {
	OrderID     string    `dynamodbav:"order_id"` // PK
	SessionID   string    `dynamodbav:"session_id"`
	Email       string    `dynamodbav:"email,omitempty"`
	Currency    string    `dynamodbav:"currency"`
	AmountMinor int64     `dynamodbav:"amount_minor"`
	Country     string    `dynamodbav:"country,omitempty"`
	Status      string    `dynamodbav:"status"` // PENDING | PAID | EXPIRED
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
	Attempts    int       `dynamodbav:"attempts,omitempty"`
}
