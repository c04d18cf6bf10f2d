package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WebhookPayload is the canonical form of a provider push notification,
// produced before any business logic runs.
type WebhookPayload struct {
	OrderID int64
	Status  string
}

// NormalizeWebhook flattens a raw webhook payload into the canonical shape.
// The provider delivers order id and status under multiple casing variants
// (`OrderId`/`orderId`/`orderid`), sometimes nested under a `Data` wrapper,
// via JSON body, form-encoded body or query string; the handler merges all
// sources into a single map before calling this.
func NormalizeWebhook(values map[string]interface{}) WebhookPayload {
	p := WebhookPayload{
		OrderID: coerceInt64(lookupFold(values, "orderid")),
		Status:  coerceString(lookupFold(values, "status")),
	}

	if data, ok := lookupFold(values, "data").(map[string]interface{}); ok {
		if p.OrderID == 0 {
			p.OrderID = coerceInt64(lookupFold(data, "orderid"))
		}
		if p.Status == "" {
			p.Status = coerceString(lookupFold(data, "status"))
		}
	}

	return p
}

// NormalizeValidation flattens a raw validation-callback payload. A non-empty
// event name marks the payload as an event notification rather than a true
// validation request.
func NormalizeValidation(values map[string]interface{}) ValidationRequest {
	return ValidationRequest{
		EventName:     coerceString(lookupFold(values, "eventname")),
		OrderID:       coerceInt64(lookupFold(values, "orderid")),
		PaymentOption: coerceString(lookupFold(values, "paymentoption")),
		BillingEmail:  coerceString(lookupFold(values, "billingemail")),
	}
}

// lookupFold finds a value by case-insensitive key.
func lookupFold(m map[string]interface{}, key string) interface{} {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func coerceInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i
	}
	return 0
}

func coerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
