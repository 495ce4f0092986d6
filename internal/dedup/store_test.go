package dedup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var printedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := s.Has(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Mark(ctx, 42, printedAt))
	require.NoError(t, s.Mark(ctx, 42, printedAt.Add(time.Minute)))
	require.NoError(t, s.Mark(ctx, 7, printedAt))

	ok, err = s.Has(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Has(ctx, 43)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestSQLiteStore_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Mark(ctx, 42, printedAt))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	ok, err := reopened.Has(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := NewRedisStore(rdb, "")
	exerciseStore(t, s)

	// first mark wins
	v := mr.HGet(DefaultRedisKey, "42")
	assert.Equal(t, printedAt.Format(time.RFC3339), v)
	require.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		target  string
		wantErr bool
	}{
		{"", false},
		{"memory", false},
		{"sqlite:" + filepath.Join(t.TempDir(), "l.db"), false},
		{"redis:" + mr.Addr(), false},
		{"sqlite:", true},
		{"redis:", true},
		{"etcd:localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			s, err := Open(ctx, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
