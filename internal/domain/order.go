package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusDraft        OrderStatus = "draft"
	StatusPending      OrderStatus = "pending"
	StatusConfirmed    OrderStatus = "confirmed"
	StatusInProduction OrderStatus = "in_production"
	StatusReady        OrderStatus = "ready"
	StatusDelivered    OrderStatus = "delivered"
)

// lifecycle is the forward-only order of statuses.
var lifecycle = []OrderStatus{
	StatusDraft,
	StatusPending,
	StatusConfirmed,
	StatusInProduction,
	StatusReady,
	StatusDelivered,
}

// FactoryStatuses are the statuses the factory pipeline reads.
var FactoryStatuses = []OrderStatus{StatusPending, StatusConfirmed}

func (s OrderStatus) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool { return s.rank() >= 0 }

// CanAdvanceTo reports whether next is strictly later in the lifecycle.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, to := s.rank(), next.rank()
	return from >= 0 && to > from
}

type Order struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber   string          `json:"order_number" gorm:"size:50;uniqueIndex;not null"`
	BranchName    string          `json:"branch_name" gorm:"size:100;not null"`
	CustomerLabel string          `json:"customer_label" gorm:"size:200"`
	DeliveryDate  time.Time       `json:"delivery_date" gorm:"type:date"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);index;default:'draft'"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CreatedBy     string          `json:"created_by" gorm:"size:150"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index;autoCreateTime"`
	Items         []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64          `json:"order_id" gorm:"index;not null"`
	Position     int             `json:"position" gorm:"not null;default:0"`
	ProductName  string          `json:"product_name" gorm:"size:200;not null"`
	CategoryName *string         `json:"category_name" gorm:"size:100"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit         string          `json:"unit" gorm:"size:20"`
	Notes        string          `json:"notes" gorm:"size:500"`
}

// StatusHistory records a status transition made on an order.
type StatusHistory struct {
	ID         uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID    uint64      `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus   OrderStatus `json:"to_status" gorm:"type:varchar(20);not null"`
	ChangedBy  string      `json:"changed_by" gorm:"size:150"`
	ChangedAt  time.Time   `json:"changed_at" gorm:"autoCreateTime"`
}

func (StatusHistory) TableName() string { return "order_status_history" }

// OrderNumber builds "<BRA>-<YYYYMMDD>-<seq>" from the branch name, the day and
// the 1-based count of that branch's orders on that day.
func OrderNumber(branch string, day time.Time, seq int) string {
	code := "GEN"
	if b := []rune(strings.TrimSpace(branch)); len(b) > 0 {
		if len(b) > 3 {
			b = b[:3]
		}
		code = strings.ToUpper(string(b))
	}
	return fmt.Sprintf("%s-%s-%03d", code, day.Format("20060102"), seq)
}
