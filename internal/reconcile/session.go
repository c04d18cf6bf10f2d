package reconcile

import "time"

// DefaultSessionMaxAge bounds how long a client session record stays usable
// for identifier fallback. A record older than this is treated as an
// abandoned checkout attempt.
const DefaultSessionMaxAge = 30 * time.Minute

// SessionRecord is the client-persisted bookkeeping for an in-flight
// checkout, stored session-scoped under a configurable key on the client and
// echoed back with the confirmation request when URL parameters are absent.
type SessionRecord struct {
	SveaOrderID       int64     `json:"sveaOrderId,omitempty"`
	TransactionID     string    `json:"transactionId,omitempty"`
	ClientOrderNumber string    `json:"clientOrderNumber,omitempty"`
	SavedAt           time.Time `json:"savedAt"`
}

// Fresh reports whether the record is recent enough to trust its identifiers.
func (s *SessionRecord) Fresh(maxAge time.Duration, now time.Time) bool {
	if s == nil || s.SavedAt.IsZero() {
		return false
	}
	return now.Sub(s.SavedAt) <= maxAge
}

// Identifiers returns the identifier subset the record carries.
func (s *SessionRecord) Identifiers() Identifiers {
	if s == nil {
		return Identifiers{}
	}
	return Identifiers{
		SveaOrderID:       s.SveaOrderID,
		TransactionID:     s.TransactionID,
		ClientOrderNumber: s.ClientOrderNumber,
	}
}
