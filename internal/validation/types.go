package validation

// InitiateItem is a single order row as the client submits it. Prices are in
// minor currency units; VatRate is percent in minor units (2500 = 25%).
type InitiateItem struct {
	Product   string `json:"product" validate:"required"`
	Variant   string `json:"variant,omitempty"`
	Name      string `json:"name" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	UnitPrice int64  `json:"unitPrice" validate:"required,gt=0"`
	VatRate   int64  `json:"vatRate" validate:"min=0"`
}

// InitiateAddress is the billing address supplied at payment initiation.
type InitiateAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty"`
}

// InitiatePaymentRequest is the payload for POST /api/svea/initiate.
type InitiatePaymentRequest struct {
	CartID         string           `json:"cartId" validate:"required"`
	Currency       string           `json:"currency" validate:"required,len=3"`
	Email          string           `json:"email" validate:"required,email"`
	CustomerID     string           `json:"customerId,omitempty"`
	Amount         int64            `json:"amount" validate:"required,gt=0"` // total in minor units
	Items          []InitiateItem   `json:"items" validate:"required,min=1,dive"`
	BillingAddress *InitiateAddress `json:"billingAddress" validate:"required"`
}
