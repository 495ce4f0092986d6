package infra

import (
	"context"

	"factory-dispatch/internal/domain"
)

type OrderStoreInterface interface {
	FetchOrders(ctx context.Context, p FetchParams) (*domain.FactoryOrdersResponse, error)
	MarkPrinted(ctx context.Context, orderID uint64) (*domain.MarkPrintedResponse, error)
}

var _ OrderStoreInterface = (*OrderStoreClient)(nil)

var (
	_ TokenSource = SecretToken("")
	_ TokenSource = SignedToken{}
)
