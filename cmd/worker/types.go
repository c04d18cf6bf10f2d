package main

// FinalizedMessage is the payload published after materialization and
// consumed here for fulfillment kick-off.
type FinalizedMessage struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	SveaOrderID   int64  `json:"svea_order_id"`
}
