package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// OrderDTO is the wire shape of an order on the factory endpoints. Dates are
// kept as strings so that a malformed value can still be printed verbatim.
type OrderDTO struct {
	ID            uint64          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	BranchName    string          `json:"branch_name"`
	CustomerLabel string          `json:"customer_label,omitempty"`
	DeliveryDate  string          `json:"delivery_date"`
	CreatedAt     string          `json:"created_at"`
	Status        OrderStatus     `json:"status"`
	Notes         string          `json:"notes"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedBy     string          `json:"created_by"`
	Items         []OrderItemDTO  `json:"items"`
}

type OrderItemDTO struct {
	ProductName  string          `json:"product_name"`
	CategoryName *string         `json:"category_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Notes        string          `json:"notes"`
}

type FactoryOrdersResponse struct {
	Orders    []OrderDTO `json:"orders"`
	Count     int        `json:"count"`
	Timestamp string     `json:"timestamp"`
}

type MarkPrintedRequest struct {
	Token   string `json:"token"`
	OrderID uint64 `json:"order_id"`
}

type MarkPrintedResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number"`
}

func (o *Order) ToDTO() OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			ProductName:  it.ProductName,
			CategoryName: it.CategoryName,
			Quantity:     it.Quantity,
			Unit:         it.Unit,
			Notes:        it.Notes,
		})
	}
	dto := OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		BranchName:    o.BranchName,
		CustomerLabel: o.CustomerLabel,
		Status:        o.Status,
		Notes:         o.Notes,
		TotalAmount:   o.TotalAmount,
		CreatedBy:     o.CreatedBy,
		Items:         items,
	}
	if !o.DeliveryDate.IsZero() {
		dto.DeliveryDate = o.DeliveryDate.Format(DateLayout)
	}
	if !o.CreatedAt.IsZero() {
		dto.CreatedAt = o.CreatedAt.UTC().Format(DateTimeLayout)
	}
	return dto
}

// ServerTime parses Timestamp, the server clock read before the query ran.
func (r FactoryOrdersResponse) ServerTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CreatedTime parses CreatedAt, reporting false when it is missing or malformed.
func (o OrderDTO) CreatedTime() (time.Time, bool) {
	if o.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
