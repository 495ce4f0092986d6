package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusDraft, StatusDelivered, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
		{OrderStatus("bogus"), StatusConfirmed, false},
		{StatusPending, OrderStatus("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestOrderNumber(t *testing.T) {
	day := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "VEG-20250101-001", OrderNumber("Vega", day, 1))
	assert.Equal(t, "ÇAR-20250101-012", OrderNumber("Çarşı", day, 12))
	assert.Equal(t, "GEN-20250101-003", OrderNumber("  ", day, 3))
	assert.Equal(t, "AB-20250101-001", OrderNumber("ab", day, 1))
}

func TestOrder_ToDTO(t *testing.T) {
	cat := "DİLİM PASTALAR"
	o := &Order{
		ID:           42,
		OrderNumber:  "VEG-20250101-001",
		BranchName:   "Vega",
		DeliveryDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
		Status:       StatusPending,
		TotalAmount:  decimal.RequireFromString("120.50"),
		Items: []OrderItem{
			{ProductName: "Dilim Çikolata", CategoryName: &cat, Quantity: decimal.NewFromInt(6), Unit: "adet"},
		},
	}

	dto := o.ToDTO()

	assert.Equal(t, uint64(42), dto.ID)
	assert.Equal(t, "2025-01-02", dto.DeliveryDate)
	assert.Equal(t, "2025-01-01T10:30:00Z", dto.CreatedAt)
	assert.Len(t, dto.Items, 1)
	assert.Equal(t, &cat, dto.Items[0].CategoryName)

	created, ok := dto.CreatedTime()
	assert.True(t, ok)
	assert.True(t, created.Equal(o.CreatedAt))

	_, ok = OrderDTO{CreatedAt: "yesterday"}.CreatedTime()
	assert.False(t, ok)
}
