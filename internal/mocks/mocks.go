package mocks

import (
	"context"

	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/infra"
	"factory-dispatch/internal/printsink"
	"factory-dispatch/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockOrderStore struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockSink struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindFactoryOrders(ctx context.Context, q repository.FactoryQuery) ([]domain.Order, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ConfirmIfPending(ctx context.Context, id uint64, changedBy string) (*domain.Order, bool, error) {
	args := m.Called(ctx, id, changedBy)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Order), args.Bool(1), args.Error(2)
}

func (m *MockOrderStore) FetchOrders(ctx context.Context, p infra.FetchParams) (*domain.FactoryOrdersResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FactoryOrdersResponse), args.Error(1)
}

func (m *MockOrderStore) MarkPrinted(ctx context.Context, orderID uint64) (*domain.MarkPrintedResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarkPrintedResponse), args.Error(1)
}

func (m *MockSink) Print(ctx context.Context, job printsink.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockSink) Name() string { return "mock" }

var (
	_ repository.OrderRepository = (*MockOrderRepository)(nil)
	_ infra.OrderStoreInterface  = (*MockOrderStore)(nil)
	_ printsink.Sink             = (*MockSink)(nil)
)
