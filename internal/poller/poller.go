// Package poller runs the factory print loop: query the order store, print
// each order not yet in the dedup ledger, acknowledge it, then record it.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"factory-dispatch/internal/dedup"
	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/infra"
	"factory-dispatch/internal/logger"
	"factory-dispatch/internal/printsink"
	"factory-dispatch/internal/ticket"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const recentLimit = 50

var (
	errPrint = errors.New("print failed")
	errAck   = errors.New("acknowledgement failed")
)

type Config struct {
	Interval     time.Duration
	ErrorBackoff time.Duration
	LookbackDays int
	// RunNowEvery bounds how often a manual refresh may trigger a tick.
	RunNowEvery time.Duration
	// PrintTimeout bounds a single print job.
	PrintTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 1
	}
	if c.RunNowEvery <= 0 {
		c.RunNowEvery = 2 * time.Second
	}
	if c.PrintTimeout <= 0 {
		c.PrintTimeout = 30 * time.Second
	}
	return c
}

// Poller is driven by a single Run goroutine, which is the only writer of the
// ledger and of the last check time. Start, Stop, RunNow and Status are safe
// to call from any goroutine.
type Poller struct {
	store      infra.OrderStoreInterface
	ledger     dedup.Store
	sink       printsink.Sink
	classifier *ticket.Classifier
	formatter  *ticket.Formatter
	cfg        Config
	now        func() time.Time

	running atomic.Bool
	wake    chan struct{}
	runNow  chan struct{}
	limiter *rate.Limiter

	lastCheck *time.Time

	mu     sync.Mutex
	status Status
}

type Status struct {
	Running     bool          `json:"running"`
	Printer     string        `json:"printer"`
	LastCheck   *time.Time    `json:"last_check,omitempty"`
	LastTick    *time.Time    `json:"last_tick,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	Printed     int           `json:"printed"`
	PrintFailed int           `json:"print_failed"`
	AckFailed   int           `json:"ack_failed"`
	Processed   int           `json:"processed"`
	Recent      []RecentOrder `json:"recent"`
}

// RecentOrder is one row of the last query, for display.
type RecentOrder struct {
	ID          uint64             `json:"id"`
	OrderNumber string             `json:"order_number"`
	BranchName  string             `json:"branch_name"`
	Status      domain.OrderStatus `json:"status"`
	Printed     bool               `json:"printed"`
}

type TickResult struct {
	Fetched     int
	Skipped     int
	Printed     int
	PrintFailed int
	AckFailed   int
	Err         error
}

func New(store infra.OrderStoreInterface, ledger dedup.Store, sink printsink.Sink,
	classifier *ticket.Classifier, formatter *ticket.Formatter, cfg Config) *Poller {
	cfg = cfg.withDefaults()
	if _, ok := sink.(*printsink.Serialized); !ok {
		sink = printsink.NewSerialized(sink)
	}
	return &Poller{
		store:      store,
		ledger:     ledger,
		sink:       sink,
		classifier: classifier,
		formatter:  formatter,
		cfg:        cfg,
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		runNow:     make(chan struct{}, 1),
		limiter:    rate.NewLimiter(rate.Every(cfg.RunNowEvery), 1),
	}
}

// Start asks the loop to run ticks. It takes effect at the next tick boundary.
func (p *Poller) Start() {
	p.running.Store(true)
	signal(p.wake)
}

// Stop asks the loop to idle after the tick in progress, if any.
func (p *Poller) Stop() {
	p.running.Store(false)
	signal(p.wake)
}

func (p *Poller) Running() bool { return p.running.Load() }

// RunNow requests one extra tick, whether or not the poller is running. It
// reports false when the request was throttled.
func (p *Poller) RunNow() bool {
	if !p.limiter.Allow() {
		return false
	}
	signal(p.runNow)
	return true
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Run drives the loop until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	force := false
	for {
		if ctx.Err() != nil {
			return nil
		}

		var wait <-chan time.Time
		var timer *time.Timer
		if p.running.Load() || force {
			force = false
			res := p.Tick(ctx)
			if p.running.Load() {
				d := p.cfg.Interval
				if res.Err != nil {
					d = p.cfg.ErrorBackoff
				}
				timer = time.NewTimer(d)
				wait = timer.C
			}
		}

		select {
		case <-ctx.Done():
		case <-wait:
		case <-p.wake:
		case <-p.runNow:
			force = true
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Tick performs one query and processes the returned orders in order.
func (p *Poller) Tick(ctx context.Context) TickResult {
	start := p.now()
	logger.Debug("poll tick", zap.Timep("last_check", p.lastCheck))

	resp, err := p.store.FetchOrders(ctx, infra.FetchParams{
		Days:      p.cfg.LookbackDays,
		LastCheck: p.lastCheck,
	})
	if err != nil {
		if errors.Is(err, infra.ErrUnauthorized) {
			// a rejected token stays rejected; wait for the operator
			p.running.Store(false)
			logger.Error("order store rejected the token, polling stopped", zap.Error(err))
		} else {
			logger.Warn("order query failed", zap.Error(err))
		}
		p.recordTick(start, TickResult{Err: err}, nil)
		return TickResult{Err: err}
	}

	// the server clock taken before its query; orders created later are
	// still above it next tick
	watermark, ok := resp.ServerTime()
	if !ok {
		watermark = start
	}

	res := TickResult{Fetched: len(resp.Orders)}
	recent := make([]RecentOrder, 0, len(resp.Orders))
	var (
		hold          *time.Time
		keepLastCheck bool
	)
	for _, o := range resp.Orders {
		if ctx.Err() != nil {
			// shutting down; the rest of the batch stays in the window
			keepLastCheck = true
			break
		}
		row := RecentOrder{ID: o.ID, OrderNumber: o.OrderNumber, BranchName: o.BranchName, Status: o.Status}

		seen, err := p.ledger.Has(ctx, o.ID)
		if err != nil {
			logger.Warn("dedup lookup failed, printing anyway", zap.Uint64("order_id", o.ID), zap.Error(err))
		}
		if seen {
			res.Skipped++
			row.Printed = true
			recent = append(recent, row)
			continue
		}

		if err := p.process(ctx, o); err != nil {
			if errors.Is(err, errPrint) {
				res.PrintFailed++
			} else {
				res.AckFailed++
			}
			// keep the failed order inside the next query window
			if created, ok := o.CreatedTime(); ok {
				if hold == nil || created.Before(*hold) {
					hold = &created
				}
			} else {
				keepLastCheck = true
			}
			recent = append(recent, row)
			if errors.Is(err, infra.ErrUnauthorized) {
				// same as a rejected query: stop and leave the rest of the
				// batch in the window
				p.running.Store(false)
				logger.Error("order store rejected the acknowledgement, polling stopped", zap.Error(err))
				res.Err = err
				keepLastCheck = true
				break
			}
			continue
		}
		res.Printed++
		row.Printed = true
		recent = append(recent, row)
	}

	switch {
	case keepLastCheck:
	case hold != nil:
		p.lastCheck = hold
	default:
		p.lastCheck = &watermark
	}

	if res.Printed > 0 || res.PrintFailed > 0 || res.AckFailed > 0 {
		logger.Info("poll tick done",
			zap.Int("fetched", res.Fetched),
			zap.Int("printed", res.Printed),
			zap.Int("skipped", res.Skipped),
			zap.Int("print_failed", res.PrintFailed),
			zap.Int("ack_failed", res.AckFailed))
	}
	p.recordTick(start, res, recent)
	return res
}

func (p *Poller) process(ctx context.Context, o domain.OrderDTO) error {
	at := p.now()
	groups := p.classifier.GroupItems(o.Items)
	text := p.formatter.Format(o, groups, at, p.sink.Name())

	job := printsink.Job{ID: uuid.NewString(), OrderNumber: o.OrderNumber, Text: text, CreatedAt: at}
	if err := p.printJob(ctx, job); err != nil {
		logger.Error("print failed",
			zap.Uint64("order_id", o.ID),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return errPrint
	}
	logger.Info("order printed",
		zap.Uint64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("job_id", job.ID))

	if _, err := p.store.MarkPrinted(ctx, o.ID); err != nil {
		logger.Error("acknowledgement failed, order will be printed again",
			zap.Uint64("order_id", o.ID),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
		return fmt.Errorf("%w: %w", errAck, err)
	}

	if err := p.ledger.Mark(ctx, o.ID, at); err != nil {
		logger.Error("dedup record failed",
			zap.Uint64("order_id", o.ID),
			zap.Error(err))
	}
	return nil
}

// TestPrint sends a test page through the same sink the loop prints to.
func (p *Poller) TestPrint(ctx context.Context) error {
	at := p.now()
	job := printsink.Job{
		ID:          uuid.NewString(),
		OrderNumber: "TEST",
		Text:        p.formatter.TestPage(p.sink.Name(), at),
		CreatedAt:   at,
	}
	if err := p.printJob(ctx, job); err != nil {
		logger.Error("test print failed", zap.Error(err))
		return err
	}
	logger.Info("test page printed", zap.String("printer", p.sink.Name()))
	return nil
}

func (p *Poller) printJob(ctx context.Context, job printsink.Job) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PrintTimeout)
	defer cancel()
	return p.sink.Print(ctx, job)
}

func (p *Poller) recordTick(at time.Time, res TickResult, recent []RecentOrder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.LastTick = &at
	if p.lastCheck != nil {
		lc := *p.lastCheck
		p.status.LastCheck = &lc
	}
	p.status.LastError = ""
	if res.Err != nil {
		p.status.LastError = res.Err.Error()
	}
	if recent != nil {
		if len(recent) > recentLimit {
			recent = recent[len(recent)-recentLimit:]
		}
		p.status.Recent = recent
	}
	p.status.Printed += res.Printed
	p.status.PrintFailed += res.PrintFailed
	p.status.AckFailed += res.AckFailed
}

// Status returns a snapshot for the control surface.
func (p *Poller) Status(ctx context.Context) Status {
	p.mu.Lock()
	st := p.status
	st.Recent = append([]RecentOrder(nil), p.status.Recent...)
	p.mu.Unlock()

	st.Running = p.running.Load()
	st.Printer = p.sink.Name()
	if n, err := p.ledger.Len(ctx); err == nil {
		st.Processed = n
	}
	return st
}

// LastCheck reports the lower bound the next query will use.
func (p *Poller) LastCheck() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.LastCheck
}
