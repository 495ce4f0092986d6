package http

import (
	"context"
	"net/http"

	"factory-dispatch/internal/poller"

	"github.com/gin-gonic/gin"
)

type PollerControl interface {
	Start()
	Stop()
	Running() bool
	RunNow() bool
	TestPrint(ctx context.Context) error
	Status(ctx context.Context) poller.Status
}

var _ PollerControl = (*poller.Poller)(nil)

// ControlHandler exposes start, stop and manual refresh for a local operator.
type ControlHandler struct {
	poller PollerControl
}

func NewControlHandler(p PollerControl) *ControlHandler {
	return &ControlHandler{poller: p}
}

func (h *ControlHandler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/control")
	g.GET("/status", h.Status)
	g.POST("/start", h.Start)
	g.POST("/stop", h.Stop)
	g.POST("/refresh", h.Refresh)
	g.POST("/test-print", h.TestPrint)
}

func (h *ControlHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.poller.Status(c.Request.Context()))
}

func (h *ControlHandler) Start(c *gin.Context) {
	h.poller.Start()
	c.JSON(http.StatusOK, ControlResponse{Running: true, Message: "polling started"})
}

func (h *ControlHandler) Stop(c *gin.Context) {
	h.poller.Stop()
	c.JSON(http.StatusOK, ControlResponse{Running: false, Message: "polling stops after the current check"})
}

func (h *ControlHandler) Refresh(c *gin.Context) {
	if !h.poller.RunNow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "refresh already requested, try again shortly"})
		return
	}
	c.JSON(http.StatusAccepted, ControlResponse{Running: h.poller.Running(), Message: "check scheduled"})
}

func (h *ControlHandler) TestPrint(c *gin.Context) {
	if err := h.poller.TestPrint(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ControlResponse{Running: h.poller.Running(), Message: "test page printed"})
}
