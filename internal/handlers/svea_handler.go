package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/checkout"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/reconcile"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/validation"
)

// AuthFunc extracts the authenticated user from a request, if any. Both
// returns are empty for anonymous calls.
type AuthFunc func(c *gin.Context) (userID, email string)

// HandlerConfig groups dependencies for the Svea routes.
type HandlerConfig struct {
	DynamoDBClient awsx.DynamoDBAPI
	SQSClient      awsx.SQSAPI

	TransactionsTable string
	OrdersTable       string
	CartsTable        string
	QueueURL          string

	Svea svea.Config

	CountryCode           string
	TermsURL              string
	CheckoutURL           string
	ConfirmationURL       string
	PushURL               string
	ValidationCallbackURL string

	SessionMaxAge time.Duration

	Auth      AuthFunc                // optional
	Validate  reconcile.ValidateFunc  // optional
	ClearCart reconcile.ClearCartFunc // optional

	Logger *slog.Logger
}

// RegisterSveaRoutes wires the four endpoints. Missing provider credentials
// surface here, at setup, not at first request.
func RegisterSveaRoutes(r *gin.Engine, cfg HandlerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := svea.NewClient(cfg.Svea)
	if err != nil {
		return err
	}

	transactions := store.NewTransactions(cfg.DynamoDBClient, cfg.TransactionsTable)
	orders := store.NewOrders(cfg.DynamoDBClient, cfg.OrdersTable)
	carts := store.NewCarts(cfg.DynamoDBClient, cfg.CartsTable)

	var publisher reconcile.Publisher
	if cfg.SQSClient != nil && cfg.QueueURL != "" {
		publisher = awsx.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	}

	coordinator := reconcile.NewCoordinator(reconcile.Config{
		Transactions:    transactions,
		Orders:          orders,
		Carts:           carts,
		Gateway:         client,
		Publisher:       publisher,
		MapAddress:      checkout.MapProviderAddress,
		Logger:          logger,
		ConfirmationURL: cfg.ConfirmationURL,
		SessionMaxAge:   cfg.SessionMaxAge,
		Validate:        cfg.Validate,
		ClearCart:       cfg.ClearCart,
	})

	service := checkout.NewService(checkout.Config{
		Gateway:               client,
		Transactions:          transactions,
		Logger:                logger,
		CountryCode:           cfg.CountryCode,
		TermsURL:              cfg.TermsURL,
		CheckoutURL:           cfg.CheckoutURL,
		ConfirmationURL:       cfg.ConfirmationURL,
		PushURL:               cfg.PushURL,
		ValidationCallbackURL: cfg.ValidationCallbackURL,
	})

	v := validation.New()

	r.POST("/api/svea/initiate", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.InitiatePaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}
		if cfg.Auth != nil {
			if userID, _ := cfg.Auth(c); userID != "" && req.CustomerID == "" {
				req.CustomerID = userID
			}
		}

		result, err := service.InitiatePayment(ctx, req)
		if err != nil {
			var apiErr *svea.APIError
			if errors.As(err, &apiErr) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "svea_rejected", "msg": apiErr.Message})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "initiate_failed", "msg": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, result)
	})

	// The provider retries undelivered webhooks; an error status here would
	// only feed a retry storm, so the answer is success no matter what.
	webhook := func(c *gin.Context) {
		payload := reconcile.NormalizeWebhook(collectValues(c))
		coordinator.HandleWebhook(c.Request.Context(), payload)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
	r.GET("/api/svea/webhook", webhook)
	r.POST("/api/svea/webhook", webhook)

	validate := func(c *gin.Context) {
		corsOpen(c)
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusOK)
			return
		}
		req := reconcile.NormalizeValidation(collectValues(c))
		resp := coordinator.HandleValidation(c.Request.Context(), req)
		c.JSON(http.StatusOK, resp)
	}
	r.GET("/api/svea/validate", validate)
	r.POST("/api/svea/validate", validate)
	r.PUT("/api/svea/validate", validate)
	r.OPTIONS("/api/svea/validate", validate)

	r.POST("/api/svea/confirm", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req reconcile.ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
			return
		}
		if cfg.Auth != nil {
			req.UserID, req.UserEmail = cfg.Auth(c)
		}

		result, err := coordinator.ConfirmOrder(ctx, req)
		if err != nil {
			status, code := confirmErrorStatus(err)
			c.JSON(status, gin.H{"error": code, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	return nil
}

func confirmErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, reconcile.ErrMissingIdentifiers):
		return http.StatusBadRequest, "missing_identifiers"
	case errors.Is(err, reconcile.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction_not_found"
	case errors.Is(err, reconcile.ErrOrderNotFinalized):
		return http.StatusConflict, "order_not_finalized"
	}
	var apiErr *svea.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, "svea_error"
	}
	return http.StatusInternalServerError, "confirm_failed"
}

// collectValues merges query parameters with a JSON or form-encoded body into
// one map; payload casing is normalized downstream.
func collectValues(c *gin.Context) map[string]interface{} {
	values := map[string]interface{}{}
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			values[k] = vs[0]
		}
	}

	if c.Request.Body == nil {
		return values
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		return values
	}

	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err == nil {
		for k, val := range m {
			values[k] = val
		}
		return values
	}
	if form, err := url.ParseQuery(string(body)); err == nil {
		for k, vs := range form {
			if len(vs) > 0 {
				values[k] = vs[0]
			}
		}
	}
	return values
}

func corsOpen(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
