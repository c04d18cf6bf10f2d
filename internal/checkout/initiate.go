package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/validation"
)

// PaymentMethod tags transactions created by this adapter.
const PaymentMethod = "svea-checkout"

// Gateway is the slice of the provider client the initiation path needs.
type Gateway interface {
	CreateOrder(ctx context.Context, req *svea.CreateOrderRequest) (*svea.CheckoutOrder, error)
}

// TransactionCreator persists the pending transaction.
type TransactionCreator interface {
	Create(ctx context.Context, tx store.Transaction) error
}

// Config groups the collaborators and merchant settings for the Service.
type Config struct {
	Gateway      Gateway
	Transactions TransactionCreator
	Validator    *validatorv10.Validate
	Logger       *slog.Logger

	// CountryCode is the merchant country, e.g. "SE". Drives the locale.
	CountryCode string

	// Callback URLs embedded in every created order.
	TermsURL              string
	CheckoutURL           string
	ConfirmationURL       string
	PushURL               string
	ValidationCallbackURL string
}

// Service runs payment initiation: validate the request, create the provider
// order, persist the pending transaction.
type Service struct {
	cfg      Config
	validate *validatorv10.Validate
	logger   *slog.Logger

	newID   func() string
	nowFunc func() time.Time
}

// InitiateResult is returned to the client so it can render the checkout
// snippet and persist its session record.
type InitiateResult struct {
	TransactionID     string `json:"transactionId"`
	SveaOrderID       int64  `json:"sveaOrderId"`
	ClientOrderNumber string `json:"clientOrderNumber"`
	Snippet           string `json:"snippet,omitempty"`
}

// NewService wires a Service. A nil Validator gets the package default.
func NewService(cfg Config) *Service {
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		validate: v,
		logger:   logger,
		newID:    uuid.NewString,
		nowFunc:  time.Now,
	}
}

// InitiatePayment validates the request, creates the Svea order and persists
// the pending transaction. No partial state is committed on validation
// failure; a gateway failure leaves no transaction behind.
func (s *Service) InitiatePayment(ctx context.Context, req validation.InitiatePaymentRequest) (*InitiateResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	clientOrderNumber := fmt.Sprintf("ORDER-%s-%d", req.CartID, s.nowFunc().Unix())

	rows := make([]svea.OrderRow, 0, len(req.Items))
	for _, it := range req.Items {
		rows = append(rows, svea.OrderRow{
			ArticleNumber: it.Product,
			Name:          it.Name,
			Quantity:      int64(it.Quantity) * 100, // minor units, 100 = 1 pc
			UnitPrice:     it.UnitPrice,
			VatPercent:    it.VatRate,
		})
	}

	createReq := &svea.CreateOrderRequest{
		CountryCode:       strings.ToUpper(s.cfg.CountryCode),
		Currency:          currency,
		Locale:            LocaleFor(s.cfg.CountryCode),
		ClientOrderNumber: clientOrderNumber,
		Cart:              svea.Cart{Items: rows},
		MerchantSettings: svea.MerchantSettings{
			TermsURI:                      s.cfg.TermsURL,
			CheckoutURI:                   s.cfg.CheckoutURL,
			ConfirmationURI:               s.cfg.ConfirmationURL,
			PushURI:                       s.cfg.PushURL,
			CheckoutValidationCallBackURI: s.cfg.ValidationCallbackURL,
		},
		PresetValues: []svea.PresetValue{
			{TypeName: "EmailAddress", Value: req.Email, IsReadOnly: true},
		},
	}

	po, err := s.cfg.Gateway.CreateOrder(ctx, createReq)
	if err != nil {
		return nil, fmt.Errorf("create svea order: %w", err)
	}

	tx := store.Transaction{
		TransactionID:  s.newID(),
		PaymentMethod:  PaymentMethod,
		Status:         store.TxPending,
		Amount:         req.Amount,
		Currency:       currency,
		CartID:         req.CartID,
		CustomerID:     req.CustomerID,
		CustomerEmail:  req.Email,
		BillingAddress: mapInitiateAddress(req.BillingAddress),
		Svea: store.SveaDetails{
			OrderID:           po.OrderID,
			ClientOrderNumber: clientOrderNumber,
			PaymentType:       po.PaymentType,
		},
		Items: snapshotItems(req.Items),
	}
	if err := s.cfg.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist pending transaction: %w", err)
	}

	s.logger.Info("payment initiated",
		"transactionId", tx.TransactionID,
		"sveaOrderId", po.OrderID,
		"clientOrderNumber", clientOrderNumber)

	result := &InitiateResult{
		TransactionID:     tx.TransactionID,
		SveaOrderID:       po.OrderID,
		ClientOrderNumber: clientOrderNumber,
	}
	if po.GUI != nil {
		result.Snippet = po.GUI.Snippet
	}
	return result, nil
}

func mapInitiateAddress(a *validation.InitiateAddress) *store.Address {
	if a == nil {
		return nil
	}
	return &store.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    strings.ToUpper(a.Country),
		Phone:      a.Phone,
	}
}

// snapshotItems stores the submitted rows on the transaction so
// materialization can fall back to them if the cart is gone by then.
func snapshotItems(items []validation.InitiateItem) []store.CartItem {
	out := make([]store.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, store.CartItem{
			Product:   it.Product,
			Variant:   it.Variant,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			VatRate:   it.VatRate,
		})
	}
	return out
}
