package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/handlers"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

func setupRouter(cfg handlers.HandlerConfig) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := handlers.RegisterSveaRoutes(r, cfg); err != nil {
		return nil, err
	}

	return r, nil
}

func main() {
	clients, err := awsx.NewClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:    clients.DynamoDB,
		SQSClient:         clients.SQS,
		TransactionsTable: os.Getenv("TRANSACTIONS_TABLE"),
		OrdersTable:       os.Getenv("ORDERS_TABLE"),
		CartsTable:        os.Getenv("CARTS_TABLE"),
		QueueURL:          os.Getenv("FINALIZED_QUEUE_URL"),
		Svea: svea.Config{
			MerchantID: os.Getenv("SVEA_MERCHANT_ID"),
			Secret:     os.Getenv("SVEA_SECRET"),
			BaseURL:    os.Getenv("SVEA_CHECKOUT_URL"),
		},
		CountryCode:           os.Getenv("MERCHANT_COUNTRY"),
		TermsURL:              os.Getenv("TERMS_URL"),
		CheckoutURL:           os.Getenv("CHECKOUT_URL"),
		ConfirmationURL:       os.Getenv("CONFIRMATION_URL"),
		PushURL:               os.Getenv("PUSH_URL"),
		ValidationCallbackURL: os.Getenv("VALIDATION_CALLBACK_URL"),
	}

	r, err := setupRouter(cfg)
	if err != nil {
		log.Fatalf("failed to set up routes: %v", err)
	}

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
