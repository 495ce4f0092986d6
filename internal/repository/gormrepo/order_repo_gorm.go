package gormrepo

import (
	"context"
	"errors"
	"time"

	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/logger"
	"factory-dispatch/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// Save inserts the order with its items. An empty order number is filled in
// from the branch's count of orders created that day.
func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.CreatedAt.IsZero() {
			order.CreatedAt = time.Now()
		}
		order.CreatedAt = order.CreatedAt.UTC()
		if order.Status == "" {
			order.Status = domain.StatusDraft
		}
		for i := range order.Items {
			if order.Items[i].Position == 0 {
				order.Items[i].Position = i + 1
			}
		}

		if order.OrderNumber == "" {
			dayStart := time.Date(order.CreatedAt.Year(), order.CreatedAt.Month(), order.CreatedAt.Day(), 0, 0, 0, 0, time.UTC)
			var n int64
			err := tx.Model(&domain.Order{}).
				Where("branch_name = ? AND created_at >= ? AND created_at < ?", order.BranchName, dayStart, dayStart.AddDate(0, 0, 1)).
				Count(&n).Error
			if err != nil {
				return err
			}
			order.OrderNumber = domain.OrderNumber(order.BranchName, dayStart, int(n)+1)
		}

		if err := tx.Create(order).Error; err != nil {
			logger.Error("order save failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
			return err
		}
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	return findByID(r.db.WithContext(ctx), id)
}

func findByID(db *gorm.DB, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := db.Preload("Items", preloadItems).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindFactoryOrders(ctx context.Context, q repository.FactoryQuery) ([]domain.Order, error) {
	db := r.db.WithContext(ctx).Preload("Items", preloadItems)
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.Since != nil {
		db = db.Where("created_at >= ?", q.Since.UTC())
	}
	if q.LastCheck != nil {
		db = db.Where("created_at >= ?", q.LastCheck.UTC())
	}

	var out []domain.Order
	if err := db.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		logger.Error("factory order query failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) ConfirmIfPending(ctx context.Context, id uint64, changedBy string) (*domain.Order, bool, error) {
	var (
		order   *domain.Order
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Update("status", domain.StatusConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			changed = true
			h := domain.StatusHistory{
				OrderID:    id,
				FromStatus: domain.StatusPending,
				ToStatus:   domain.StatusConfirmed,
				ChangedBy:  changedBy,
			}
			if err := tx.Create(&h).Error; err != nil {
				return err
			}
		}

		var err error
		order, err = findByID(tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return order, changed, nil
}
