package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/infra"
	"factory-dispatch/internal/logger"
	"factory-dispatch/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the order store's factory endpoints.
type Handler struct {
	service *services.FactoryService
	secret  string
	now     func() time.Time
}

func NewHandler(s *services.FactoryService, secret string) *Handler {
	return &Handler{service: s, secret: secret, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET(infra.FactoryOrdersPath, h.ListFactoryOrders)
	r.POST(infra.MarkPrintedPath, h.MarkPrinted)
}

// authorize returns the caller's principal; a rejected token gets a bare 401.
func (h *Handler) authorize(c *gin.Context, token string) (string, bool) {
	principal, ok := infra.VerifyToken(h.secret, token, h.now())
	if !ok {
		logger.Warn("factory request rejected", zap.String("path", c.FullPath()), zap.String("client_ip", c.ClientIP()))
		c.AbortWithStatus(http.StatusUnauthorized)
		return "", false
	}
	return principal, true
}

func (h *Handler) ListFactoryOrders(c *gin.Context) {
	if _, ok := h.authorize(c, c.Query("token")); !ok {
		return
	}

	var params services.ListParams
	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be a positive integer"})
			return
		}
		params.Days = days
	}
	if s := c.Query("last_check"); s != "" {
		t, err := parseTimestamp(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "last_check must be an ISO-8601 timestamp"})
			return
		}
		params.LastCheck = &t
	}

	resp, err := h.service.ListFactoryOrders(c.Request.Context(), params)
	if err != nil {
		logger.Error("list factory orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MarkPrinted(c *gin.Context) {
	var req domain.MarkPrintedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	principal, ok := h.authorize(c, req.Token)
	if !ok {
		return
	}
	if req.OrderID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	resp, err := h.service.MarkPrinted(c.Request.Context(), req.OrderID, principal)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
			return
		}
		logger.Error("mark printed", zap.Uint64("order_id", req.OrderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseTimestamp accepts RFC 3339 and the offset-less ISO form, read as UTC.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
}
