package repository

import (
	"context"
	"time"

	"factory-dispatch/internal/domain"
)

// FactoryQuery selects orders for the factory list endpoint. Nil bounds are
// not applied.
type FactoryQuery struct {
	Statuses  []domain.OrderStatus
	Since     *time.Time
	LastCheck *time.Time
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindFactoryOrders(ctx context.Context, q FactoryQuery) ([]domain.Order, error)
	// ConfirmIfPending moves the order from pending to confirmed and records
	// the change. It reports whether a transition happened; a nil order means
	// the id is unknown.
	ConfirmIfPending(ctx context.Context, id uint64, changedBy string) (*domain.Order, bool, error)
}
