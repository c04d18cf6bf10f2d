package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/awsx"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
)

const metricNamespace = "SveaAdapter"

// Processor consumes finalized-payment events and moves the host order into
// fulfillment.
type Processor struct {
	orders     *store.Orders
	cloudwatch awsx.CloudWatchAPI
	logger     *slog.Logger
	nowFunc    func() time.Time
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *awsx.Clients, ordersTable string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		orders:     store.NewOrders(clients.DynamoDB, ordersTable),
		cloudwatch: clients.CloudWatch,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.logger.Error("worker error", "error", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg FinalizedMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log := p.logger.With("orderId", msg.OrderID, "sveaOrderId", msg.SveaOrderID)
	log.Info("finalized event received")

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		// Should never happen; DLQ if it does
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	// processing -> completed, idempotent against redelivery
	err = p.orders.UpdateStatus(ctx, msg.OrderID, store.OrderProcessing, store.OrderCompleted)
	if err == store.ErrStatusMismatch {
		// Redelivered event or competing worker:
		// If already completed -> treat as success; swallow the duplicate.
		o2, getErr := p.orders.Get(ctx, msg.OrderID)
		if getErr != nil {
			return fmt.Errorf("failed to re-fetch order after conditional failure: %w", getErr)
		}
		if o2 != nil && o2.Status == store.OrderCompleted {
			log.Info("order already completed, duplicate event")
			return nil
		}
		return fmt.Errorf("unexpected status for order %s after conditional failure", msg.OrderID)
	}
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	p.emitFinalizedMetric(ctx)

	log.Info("order completed")
	return nil
}

// emitFinalizedMetric is observability only; failures never fail the message.
func (p *Processor) emitFinalizedMetric(ctx context.Context) {
	if p.cloudwatch == nil {
		return
	}
	ns := metricNamespace
	name := "PaymentsFinalized"
	one := 1.0
	now := p.nowFunc()
	_, err := p.cloudwatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &ns,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &one,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		p.logger.Warn("failed to emit metric", "error", err)
	}
}
