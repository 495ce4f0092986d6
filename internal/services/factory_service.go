package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"factory-dispatch/internal/domain"
	rabbit "factory-dispatch/internal/infra/rabbitmq"
	"factory-dispatch/internal/logger"
	"factory-dispatch/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrOrderNotFound = errors.New("order not found")

const (
	DefaultLookbackDays = 1
	listCacheTTL        = 5 * time.Second
	listGenerationKey   = "factory:orders:gen"
)

type ListParams struct {
	Days      int
	LastCheck *time.Time
}

// FactoryService serves the factory print pipeline: listing printable orders
// and acknowledging printed ones.
type FactoryService struct {
	repo        repository.OrderRepository
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
	now         func() time.Time
}

func NewFactoryService(r repository.OrderRepository, pub rabbit.PublisherInterface) *FactoryService {
	if pub == nil {
		pub = rabbit.NopPublisher{}
	}
	return &FactoryService{
		repo:      r,
		publisher: pub,
		now:       time.Now,
	}
}

// SetRedisClient enables the short-lived list cache.
func (s *FactoryService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *FactoryService) ListFactoryOrders(ctx context.Context, p ListParams) (*domain.FactoryOrdersResponse, error) {
	if p.Days <= 0 {
		p.Days = DefaultLookbackDays
	}

	cacheKey := s.listCacheKey(ctx, p)
	if cacheKey != "" {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp domain.FactoryOrdersResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	now := s.now().UTC()
	since := now.Add(-time.Duration(p.Days) * 24 * time.Hour)
	orders, err := s.repo.FindFactoryOrders(ctx, repository.FactoryQuery{
		Statuses:  domain.FactoryStatuses,
		Since:     &since,
		LastCheck: p.LastCheck,
	})
	if err != nil {
		return nil, err
	}

	resp := &domain.FactoryOrdersResponse{
		Orders:    make([]domain.OrderDTO, 0, len(orders)),
		Timestamp: now.Format(domain.DateTimeLayout),
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, orders[i].ToDTO())
	}
	resp.Count = len(resp.Orders)

	if cacheKey != "" {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}
	return resp, nil
}

// listCacheKey returns "" when caching is off. Queries with a last check are
// never cached: a stale answer would let the client move its watermark past
// orders the cached list did not contain. The key carries the current
// generation so an acknowledgement invalidates every cached list at once.
func (s *FactoryService) listCacheKey(ctx context.Context, p ListParams) string {
	if s.redisClient == nil || p.LastCheck != nil {
		return ""
	}
	gen, err := s.redisClient.Get(ctx, listGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("list cache unavailable", zap.Error(err))
		return ""
	}
	return fmt.Sprintf("factory:orders:g%d:d%d", gen, p.Days)
}

// MarkPrinted acknowledges a printed ticket. Only a pending order changes;
// any other existing order is left alone and still reported as success.
func (s *FactoryService) MarkPrinted(ctx context.Context, orderID uint64, printedBy string) (*domain.MarkPrintedResponse, error) {
	order, changed, err := s.repo.ConfirmIfPending(ctx, orderID, printedBy)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if changed {
		logger.Info("order confirmed by factory print",
			zap.Uint64("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.String("printed_by", printedBy))
		if s.redisClient != nil {
			if err := s.redisClient.Incr(ctx, listGenerationKey).Err(); err != nil {
				logger.Warn("list cache invalidation failed", zap.Error(err))
			}
		}
		s.publishOrderPrinted(ctx, order, printedBy)
	}

	return &domain.MarkPrintedResponse{Success: true, OrderNumber: order.OrderNumber}, nil
}

func (s *FactoryService) publishOrderPrinted(ctx context.Context, order *domain.Order, printedBy string) {
	evt := domain.OrderPrintedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BranchName:  order.BranchName,
		PrintedBy:   printedBy,
		PrintedAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, rabbit.RoutingOrderPrinted, evt); err != nil {
		logger.Error("failed to publish order.printed",
			zap.Uint64("order_id", order.ID),
			zap.Error(err))
	}
}
