package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"factory-dispatch/internal/dedup"
	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/infra"
	"factory-dispatch/internal/poller"
	"factory-dispatch/internal/printsink"
	"factory-dispatch/internal/ticket"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySink fails the named order a fixed number of times and counts the
// tickets it prints.
type flakySink struct {
	mu      sync.Mutex
	failFor string
	fails   int
	printed map[string]int
}

func (s *flakySink) Name() string { return "POS-80" }

func (s *flakySink) Print(_ context.Context, job printsink.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.OrderNumber == s.failFor && s.fails > 0 {
		s.fails--
		return errors.New("paper jam")
	}
	s.printed[job.OrderNumber]++
	return nil
}

func (s *flakySink) count(orderNumber string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printed[orderNumber]
}

func TestPipeline_CachedListDoesNotHideOrders(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	f.svc.SetRedisClient(rdb)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	now := time.Now().UTC().Truncate(time.Second)
	x := f.seed(t, domain.StatusPending, now.Add(-2*time.Minute))

	sink := &flakySink{failFor: x.OrderNumber, fails: 2, printed: map[string]int{}}
	p := poller.New(
		infra.NewOrderStoreClient(srv.URL, infra.SecretToken(testSecret), time.Second),
		dedup.NewMemoryStore(), sink,
		ticket.NewClassifier(ticket.PrimaryCakes),
		ticket.NewFormatter(ticket.DefaultOptions()),
		poller.Config{})
	ctx := context.Background()

	require.Equal(t, 1, p.Tick(ctx).PrintFailed)
	require.Equal(t, 1, p.Tick(ctx).PrintFailed)

	// arrives while X is still failing, inside the cache lifetime
	y := f.seed(t, domain.StatusPending, now.Add(-time.Minute))

	res := p.Tick(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 2, res.Printed)

	p.Tick(ctx)
	assert.Equal(t, 1, sink.count(x.OrderNumber))
	assert.Equal(t, 1, sink.count(y.OrderNumber))
}
