package svea

// Provider order statuses. Only Final may trigger host-order creation.
const (
	OrderStatusFinal     = "Final"
	OrderStatusCancelled = "Cancelled"
)

// OrderRow is a cart line in the provider's schema. Quantity and VatPercent
// are in minor units where 100 = 1 unit (2 pcs = 200, 25% = 2500); UnitPrice
// is in minor currency units including VAT.
type OrderRow struct {
	ArticleNumber string `json:"ArticleNumber,omitempty"`
	Name          string `json:"Name"`
	Quantity      int64  `json:"Quantity"`
	UnitPrice     int64  `json:"UnitPrice"`
	VatPercent    int64  `json:"VatPercent"`
}

// Cart wraps the order rows.
type Cart struct {
	Items []OrderRow `json:"Items"`
}

// Address is the provider's address shape.
type Address struct {
	FirstName   string   `json:"FirstName,omitempty"`
	LastName    string   `json:"LastName,omitempty"`
	StreetAddress string `json:"StreetAddress,omitempty"`
	CoAddress   string   `json:"CoAddress,omitempty"`
	PostalCode  string   `json:"PostalCode,omitempty"`
	City        string   `json:"City,omitempty"`
	CountryCode string   `json:"CountryCode,omitempty"`
	PhoneNumber string   `json:"PhoneNumber,omitempty"`
	FullName    string   `json:"FullName,omitempty"`
	AddressLines []string `json:"AddressLines,omitempty"`
}

// Customer carries the provider-reported customer info.
type Customer struct {
	ID    int64  `json:"Id,omitempty"`
	Email string `json:"Email,omitempty"`
}

// MerchantSettings carries the callback URLs embedded in a created order.
type MerchantSettings struct {
	TermsURI                      string `json:"TermsUri"`
	CheckoutURI                   string `json:"CheckoutUri"`
	ConfirmationURI               string `json:"ConfirmationUri"`
	PushURI                       string `json:"PushUri"`
	CheckoutValidationCallBackURI string `json:"CheckoutValidationCallBackUri,omitempty"`
}

// PresetValue prefills a field on the hosted checkout page.
type PresetValue struct {
	TypeName   string `json:"TypeName"`
	Value      string `json:"Value"`
	IsReadOnly bool   `json:"IsReadOnly"`
}

// GUI carries the hosted checkout snippet.
type GUI struct {
	Layout  string `json:"Layout,omitempty"`
	Snippet string `json:"Snippet,omitempty"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	CountryCode       string            `json:"CountryCode"`
	Currency          string            `json:"Currency"`
	Locale            string            `json:"Locale"`
	ClientOrderNumber string            `json:"ClientOrderNumber"`
	Cart              Cart              `json:"Cart"`
	MerchantSettings  MerchantSettings  `json:"MerchantSettings"`
	PresetValues      []PresetValue     `json:"PresetValues,omitempty"`
}

// CheckoutOrder is the provider's order record as returned by both the
// create and fetch endpoints. ResultCode is an embedded logical status some
// responses carry even on HTTP 200; zero and 2xx-equivalent values mean
// success.
type CheckoutOrder struct {
	OrderID           int64       `json:"OrderId"`
	Status            string      `json:"Status"`
	ClientOrderNumber string      `json:"ClientOrderNumber,omitempty"`
	PaymentType       string      `json:"PaymentType,omitempty"`
	Currency          string      `json:"Currency,omitempty"`
	EmailAddress      string      `json:"EmailAddress,omitempty"`
	Customer          *Customer   `json:"Customer,omitempty"`
	BillingAddress    *Address    `json:"BillingAddress,omitempty"`
	ShippingAddress   *Address    `json:"ShippingAddress,omitempty"`
	Cart              *Cart       `json:"Cart,omitempty"`
	GUI               *GUI        `json:"Gui,omitempty"`
	ResultCode        int         `json:"ResultCode,omitempty"`
}

// Final reports whether the order is finalized (paid) on the provider side.
func (o *CheckoutOrder) Final() bool {
	return o != nil && o.Status == OrderStatusFinal
}
