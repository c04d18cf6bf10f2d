package store

import "time"

// Transaction statuses
const (
	TxPending   = "pending"
	TxSucceeded = "succeeded"
	TxFailed    = "failed"
)

// Order statuses
const (
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
)

// Cart statuses
const (
	CartActive    = "active"
	CartPurchased = "purchased"
)

// Address is the host-side address shape shared by transactions and orders.
type Address struct {
	FirstName  string `dynamodbav:"first_name,omitempty" json:"firstName,omitempty"`
	LastName   string `dynamodbav:"last_name,omitempty" json:"lastName,omitempty"`
	Line1      string `dynamodbav:"line1,omitempty" json:"line1,omitempty"`
	Line2      string `dynamodbav:"line2,omitempty" json:"line2,omitempty"`
	City       string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	PostalCode string `dynamodbav:"postal_code,omitempty" json:"postalCode,omitempty"`
	Country    string `dynamodbav:"country,omitempty" json:"country,omitempty"`
	Phone      string `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
}

// SveaDetails is the provider sub-object carried on a transaction.
type SveaDetails struct {
	OrderID           int64  `dynamodbav:"order_id,omitempty" json:"orderId,omitempty"`
	ClientOrderNumber string `dynamodbav:"client_order_number,omitempty" json:"clientOrderNumber,omitempty"`
	PaymentType       string `dynamodbav:"payment_type,omitempty" json:"paymentType,omitempty"`
}

// Merge overlays non-zero fields of other onto a copy of d, preserving
// anything other does not carry.
func (d SveaDetails) Merge(other SveaDetails) SveaDetails {
	out := d
	if other.OrderID != 0 {
		out.OrderID = other.OrderID
	}
	if other.ClientOrderNumber != "" {
		out.ClientOrderNumber = other.ClientOrderNumber
	}
	if other.PaymentType != "" {
		out.PaymentType = other.PaymentType
	}
	return out
}

// Transaction represents one payment attempt, stored in the transactions table.
// Secondary lookup runs against the svea_order_id and client_order_number GSIs.
type Transaction struct {
	TransactionID  string      `dynamodbav:"transaction_id"` // PK
	PaymentMethod  string      `dynamodbav:"payment_method"`
	Status         string      `dynamodbav:"status"` // pending | succeeded | failed
	Amount         int64       `dynamodbav:"amount"` // minor currency units
	Currency       string      `dynamodbav:"currency"`
	CartID         string      `dynamodbav:"cart_id,omitempty"`
	CustomerID     string      `dynamodbav:"customer_id,omitempty"`
	CustomerEmail  string      `dynamodbav:"customer_email,omitempty"`
	BillingAddress *Address    `dynamodbav:"billing_address,omitempty"`
	OrderID        string      `dynamodbav:"host_order_id,omitempty"` // set once succeeded
	Svea           SveaDetails `dynamodbav:"svea"`
	SveaOrderID    int64       `dynamodbav:"svea_order_id,omitempty"`       // GSI key, mirrors Svea.OrderID
	ClientOrderNum string      `dynamodbav:"client_order_number,omitempty"` // GSI key, mirrors Svea.ClientOrderNumber
	Items          []CartItem  `dynamodbav:"items,omitempty"`               // snapshot for materialization fallback
	CreatedAt      time.Time   `dynamodbav:"created_at"`
	UpdatedAt      time.Time   `dynamodbav:"updated_at"`
}

// OrderItem is a normalized order line: bare product/variant ids only.
type OrderItem struct {
	Product  string `dynamodbav:"product" json:"product"`
	Variant  string `dynamodbav:"variant,omitempty" json:"variant,omitempty"`
	Quantity int    `dynamodbav:"quantity" json:"quantity"`
}

// Order represents a finalized purchase, stored in the orders table.
type Order struct {
	OrderID         string      `dynamodbav:"order_id"` // PK
	Amount          int64       `dynamodbav:"amount"`
	Currency        string      `dynamodbav:"currency"`
	Items           []OrderItem `dynamodbav:"items,omitempty"`
	Status          string      `dynamodbav:"status"`
	ShippingAddress *Address    `dynamodbav:"shipping_address,omitempty"`
	BillingAddress  *Address    `dynamodbav:"billing_address,omitempty"`
	CustomerID      string      `dynamodbav:"customer_id,omitempty"`
	CustomerEmail   string      `dynamodbav:"customer_email,omitempty"`
	TransactionIDs  []string    `dynamodbav:"transaction_ids"` // growing set, never shrinks
	CreatedAt       time.Time   `dynamodbav:"created_at"`
	UpdatedAt       time.Time   `dynamodbav:"updated_at"`
}

// LinkTransaction unions txID into the order's linked-transaction set.
// Reports whether the set changed.
func (o *Order) LinkTransaction(txID string) bool {
	for _, id := range o.TransactionIDs {
		if id == txID {
			return false
		}
	}
	o.TransactionIDs = append(o.TransactionIDs, txID)
	return true
}

// CartItem is a cart line as the host persists it. Product and Variant may be
// stored as a bare id string or as an embedded document carrying an "id" key;
// materialization reduces either form to the bare id.
type CartItem struct {
	Product   interface{} `dynamodbav:"product" json:"product"`
	Variant   interface{} `dynamodbav:"variant,omitempty" json:"variant,omitempty"`
	Name      string      `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Quantity  int         `dynamodbav:"quantity" json:"quantity"`
	UnitPrice int64       `dynamodbav:"unit_price,omitempty" json:"unitPrice,omitempty"` // minor units
	VatRate   int64       `dynamodbav:"vat_rate,omitempty" json:"vatRate,omitempty"`     // percent in minor units, 2500 = 25%
}

// Cart represents the pre-purchase item collection.
type Cart struct {
	CartID        string     `dynamodbav:"cart_id"` // PK
	Items         []CartItem `dynamodbav:"items,omitempty"`
	Subtotal      int64      `dynamodbav:"subtotal"`
	Currency      string     `dynamodbav:"currency"`
	CustomerID    string     `dynamodbav:"customer_id,omitempty"`
	Status        string     `dynamodbav:"status"`
	PurchasedAt   *time.Time `dynamodbav:"purchased_at,omitempty"`
	CreatedAt     time.Time  `dynamodbav:"created_at"`
	UpdatedAt     time.Time  `dynamodbav:"updated_at"`
}
