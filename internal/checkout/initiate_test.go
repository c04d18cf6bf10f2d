package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/validation"
)

type fakeGateway struct {
	createCalls int
	lastReq     *svea.CreateOrderRequest
	order       *svea.CheckoutOrder
	err         error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req *svea.CreateOrderRequest) (*svea.CheckoutOrder, error) {
	g.createCalls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return g.order, nil
}

type fakeTxCreator struct {
	created []store.Transaction
	err     error
}

func (c *fakeTxCreator) Create(ctx context.Context, tx store.Transaction) error {
	if c.err != nil {
		return c.err
	}
	c.created = append(c.created, tx)
	return nil
}

func initiateRequest() validation.InitiatePaymentRequest {
	return validation.InitiatePaymentRequest{
		CartID:   "cart-1",
		Currency: "sek",
		Email:    "buyer@example.se",
		Amount:   25900,
		Items: []validation.InitiateItem{
			{Product: "prod-1", Variant: "var-9", Name: "Wool sweater", Quantity: 2, UnitPrice: 9950, VatRate: 2500},
			{Product: "prod-2", Name: "Scarf", Quantity: 1, UnitPrice: 6000, VatRate: 2500},
		},
		BillingAddress: &validation.InitiateAddress{
			FirstName:  "Eva",
			LastName:   "Lind",
			Line1:      "Sveavägen 1",
			City:       "Stockholm",
			PostalCode: "11157",
			Country:    "se",
		},
	}
}

func serviceFixture() (*Service, *fakeGateway, *fakeTxCreator) {
	gw := &fakeGateway{order: &svea.CheckoutOrder{
		OrderID:     4711,
		Status:      "Created",
		PaymentType: "CARD",
		GUI:         &svea.GUI{Snippet: "<div id=\"svea-checkout\"></div>"},
	}}
	txs := &fakeTxCreator{}
	s := NewService(Config{
		Gateway:               gw,
		Transactions:          txs,
		CountryCode:           "SE",
		TermsURL:              "https://shop.example.se/terms",
		CheckoutURL:           "https://shop.example.se/checkout",
		ConfirmationURL:       "https://shop.example.se/order-confirmation",
		PushURL:               "https://api.example.se/api/svea/webhook",
		ValidationCallbackURL: "https://api.example.se/api/svea/validate",
	})
	s.newID = func() string { return "tx-1" }
	s.nowFunc = func() time.Time { return time.Unix(1700000000, 0) }
	return s, gw, txs
}

func TestInitiatePayment(t *testing.T) {
	s, gw, txs := serviceFixture()

	res, err := s.InitiatePayment(context.Background(), initiateRequest())
	require.NoError(t, err)

	assert.Equal(t, "tx-1", res.TransactionID)
	assert.Equal(t, int64(4711), res.SveaOrderID)
	assert.Equal(t, "ORDER-cart-1-1700000000", res.ClientOrderNumber)
	assert.Contains(t, res.Snippet, "svea-checkout")

	require.NotNil(t, gw.lastReq)
	assert.Equal(t, "SE", gw.lastReq.CountryCode)
	assert.Equal(t, "SEK", gw.lastReq.Currency)
	assert.Equal(t, "sv-SE", gw.lastReq.Locale)
	require.Len(t, gw.lastReq.Cart.Items, 2)
	// quantities travel in minor units, 100 = one piece
	assert.Equal(t, int64(200), gw.lastReq.Cart.Items[0].Quantity)
	assert.Equal(t, int64(9950), gw.lastReq.Cart.Items[0].UnitPrice)
	assert.Equal(t, "https://api.example.se/api/svea/validate", gw.lastReq.MerchantSettings.CheckoutValidationCallBackURI)

	require.Len(t, txs.created, 1)
	tx := txs.created[0]
	assert.Equal(t, store.TxPending, tx.Status)
	assert.Equal(t, PaymentMethod, tx.PaymentMethod)
	assert.Equal(t, int64(25900), tx.Amount)
	assert.Equal(t, "SEK", tx.Currency)
	assert.Equal(t, int64(4711), tx.Svea.OrderID)
	assert.Equal(t, "ORDER-cart-1-1700000000", tx.Svea.ClientOrderNumber)
	assert.Equal(t, "CARD", tx.Svea.PaymentType)
	require.NotNil(t, tx.BillingAddress)
	assert.Equal(t, "SE", tx.BillingAddress.Country)
	// item snapshot for materialization fallback
	require.Len(t, tx.Items, 2)
	assert.Equal(t, "prod-1", tx.Items[0].Product)
	assert.Equal(t, "var-9", tx.Items[0].Variant)
	assert.Equal(t, 2, tx.Items[0].Quantity)
}

func TestInitiatePayment_ValidationFailureCallsNothing(t *testing.T) {
	s, gw, txs := serviceFixture()

	req := initiateRequest()
	req.Amount = 1 // does not match the item sum

	_, err := s.InitiatePayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 0, gw.createCalls)
	assert.Empty(t, txs.created)
}

func TestInitiatePayment_GatewayFailureLeavesNoTransaction(t *testing.T) {
	s, gw, txs := serviceFixture()
	gw.err = &svea.APIError{StatusCode: 400, Message: "ClientOrderNumber already exists"}

	_, err := s.InitiatePayment(context.Background(), initiateRequest())
	require.Error(t, err)

	var apiErr *svea.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Empty(t, txs.created)
}

func TestInitiatePayment_PersistFailureSurfaces(t *testing.T) {
	s, _, txs := serviceFixture()
	txs.err = store.ErrConditionFailed

	_, err := s.InitiatePayment(context.Background(), initiateRequest())
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}
