package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"factory-dispatch/internal/domain"
)

const (
	FactoryOrdersPath = "/orders/api/factory/orders/"
	MarkPrintedPath   = "/orders/api/factory/mark-printed/"
)

var (
	ErrUnauthorized  = errors.New("order store: unauthorized")
	ErrOrderNotFound = errors.New("order store: order not found")
)

type FetchParams struct {
	Days      int
	LastCheck *time.Time
}

// OrderStoreClient talks to the order store's factory endpoints.
type OrderStoreClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewOrderStoreClient(baseURL string, tokens TokenSource, timeout time.Duration) *OrderStoreClient {
	return &OrderStoreClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

func (c *OrderStoreClient) FetchOrders(ctx context.Context, p FetchParams) (*domain.FactoryOrdersResponse, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("token", token)
	if p.Days > 0 {
		q.Set("days", strconv.Itoa(p.Days))
	}
	if p.LastCheck != nil {
		q.Set("last_check", p.LastCheck.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+FactoryOrdersPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, statusError("list orders", resp)
	}

	var out domain.FactoryOrdersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("order store: decode orders: %w", err)
	}
	return &out, nil
}

func (c *OrderStoreClient) MarkPrinted(ctx context.Context, orderID uint64) (*domain.MarkPrintedResponse, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(domain.MarkPrintedRequest{Token: token, OrderID: orderID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MarkPrintedPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	default:
		return nil, statusError("mark printed", resp)
	}

	var out domain.MarkPrintedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("order store: decode mark printed: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("order store: mark printed %d: not successful", orderID)
	}
	return &out, nil
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("order store: %s returned status %d: %s", op, resp.StatusCode, bytes.TrimSpace(b))
}
