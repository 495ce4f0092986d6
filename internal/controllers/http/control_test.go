package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"factory-dispatch/internal/poller"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeControl struct {
	running  bool
	allowRun bool
	runNows  int
	printErr error
	printed  int
}

func (f *fakeControl) Start()        { f.running = true }
func (f *fakeControl) Stop()         { f.running = false }
func (f *fakeControl) Running() bool { return f.running }

func (f *fakeControl) RunNow() bool {
	if !f.allowRun {
		return false
	}
	f.runNows++
	return true
}

func (f *fakeControl) TestPrint(context.Context) error {
	if f.printErr != nil {
		return f.printErr
	}
	f.printed++
	return nil
}

func (f *fakeControl) Status(context.Context) poller.Status {
	return poller.Status{Running: f.running, Printer: "POS-80", Printed: 3}
}

func serveControl(f *fakeControl, method, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewControlHandler(f).RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestControl_StartStopStatus(t *testing.T) {
	f := &fakeControl{}

	w := serveControl(f, http.MethodPost, "/control/start")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.running)

	w = serveControl(f, http.MethodGet, "/control/status")
	require.Equal(t, http.StatusOK, w.Code)
	var st poller.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.Running)
	assert.Equal(t, "POS-80", st.Printer)
	assert.Equal(t, 3, st.Printed)

	w = serveControl(f, http.MethodPost, "/control/stop")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.running)
}

func TestControl_Refresh(t *testing.T) {
	f := &fakeControl{allowRun: true}
	w := serveControl(f, http.MethodPost, "/control/refresh")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, f.runNows)

	f.allowRun = false
	w = serveControl(f, http.MethodPost, "/control/refresh")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestControl_TestPrint(t *testing.T) {
	f := &fakeControl{}
	w := serveControl(f, http.MethodPost, "/control/test-print")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.printed)

	f.printErr = errors.New("printer offline")
	w = serveControl(f, http.MethodPost, "/control/test-print")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "printer offline")
}
