package dedup

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PrintedOrder is one row of the append-only print log.
type PrintedOrder struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `gorm:"index;not null"`
	PrintedAt time.Time `gorm:"not null"`
}

func (PrintedOrder) TableName() string { return "printed_orders" }

// SQLiteStore appends every mark to a local sqlite log and answers Has from an
// in-memory index rebuilt from that log on open.
type SQLiteStore struct {
	db  *gorm.DB
	mem *MemoryStore
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("dedup: open sqlite %s: %w", path, err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore uses an already opened database.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&PrintedOrder{}); err != nil {
		return nil, fmt.Errorf("dedup: migrate printed_orders: %w", err)
	}

	var rows []PrintedOrder
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("dedup: load printed_orders: %w", err)
	}
	mem := NewMemoryStore()
	for _, r := range rows {
		_ = mem.Mark(context.Background(), r.OrderID, r.PrintedAt)
	}
	return &SQLiteStore{db: db, mem: mem}, nil
}

func (s *SQLiteStore) Has(ctx context.Context, orderID uint64) (bool, error) {
	return s.mem.Has(ctx, orderID)
}

func (s *SQLiteStore) Mark(ctx context.Context, orderID uint64, printedAt time.Time) error {
	row := PrintedOrder{OrderID: orderID, PrintedAt: printedAt.UTC()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("dedup: append order %d: %w", orderID, err)
	}
	return s.mem.Mark(ctx, orderID, printedAt)
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	return s.mem.Len(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)
