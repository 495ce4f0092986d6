package domain

import "time"

// OrderPrintedEvent is published when a factory ticket acknowledgement moves
// an order from pending to confirmed.
type OrderPrintedEvent struct {
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	BranchName  string    `json:"branchName"`
	PrintedBy   string    `json:"printedBy"`
	PrintedAt   time.Time `json:"printedAt"`
}
