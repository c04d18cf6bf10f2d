package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for InitiatePaymentRequest to ensure
	// the provided Amount matches the sum of (unit price * quantity) of items.
	v.RegisterStructValidation(initiatePaymentStructValidation, InitiatePaymentRequest{})

	return v
}

// initiatePaymentStructValidation verifies the aggregated total of items equals Amount.
// Everything is integer minor units so the comparison is exact.
func initiatePaymentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(InitiatePaymentRequest)

	var sum int64
	for _, it := range req.Items {
		sum += int64(it.Quantity) * it.UnitPrice
	}

	if sum != req.Amount {
		sl.ReportError(req.Amount, "amount", "Amount", "amount_match_items", fmt.Sprintf("items sum %d != amount %d", sum, req.Amount))
	}
}
