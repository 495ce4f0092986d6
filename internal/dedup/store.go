// Package dedup records which orders a factory site has already printed and
// acknowledged, so that a later poll does not print them again.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store is the dedup ledger. Mark is only called after an order has been
// printed and acknowledged.
type Store interface {
	Has(ctx context.Context, orderID uint64) (bool, error)
	Mark(ctx context.Context, orderID uint64, printedAt time.Time) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// Open builds a Store from an identifier:
//
//	memory             process-lifetime set
//	sqlite:<path>      append-only log in a local sqlite file
//	redis:<host:port>  redis set, shared by restarts of the same site
func Open(ctx context.Context, target string) (Store, error) {
	kind, arg, _ := strings.Cut(target, ":")
	switch strings.ToLower(kind) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if arg == "" {
			return nil, fmt.Errorf("dedup: sqlite needs a path")
		}
		return OpenSQLiteStore(arg)
	case "redis":
		if arg == "" {
			return nil, fmt.Errorf("dedup: redis needs an address")
		}
		return OpenRedisStore(ctx, arg, DefaultRedisKey)
	default:
		return nil, fmt.Errorf("dedup: unknown store %q", target)
	}
}
