package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"factory-dispatch/internal/domain"
	"factory-dispatch/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "factory-printer", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "check", "test-print"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	cfgFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "c", cfgFlag.Shorthand)

	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.NotNil(t, runCmd.Flags().Lookup("paused"))
	assert.NotNil(t, runCmd.Flags().Lookup("once"))
}

// fakeStore serves one pending order and counts acknowledgements.
func fakeStore(t *testing.T, acks *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(infra.FactoryOrdersPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.FactoryOrdersResponse{
			Orders: []domain.OrderDTO{{
				ID:          42,
				OrderNumber: "VEG-20250101-001",
				BranchName:  "Vega",
				CreatedAt:   "2025-01-01T09:30:00Z",
				Status:      domain.StatusPending,
				Items: []domain.OrderItemDTO{
					{ProductName: "Dilim Çikolata", Quantity: decimal.NewFromInt(6), Unit: "adet"},
				},
			}},
			Count:     1,
			Timestamp: "2025-01-01T10:00:00Z",
		})
	})
	mux.HandleFunc(infra.MarkPrintedPath, func(w http.ResponseWriter, r *http.Request) {
		acks.Add(1)
		_ = json.NewEncoder(w).Encode(domain.MarkPrintedResponse{Success: true, OrderNumber: "VEG-20250101-001"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	var acks atomic.Int32
	srv := fakeStore(t, &acks)
	t.Setenv("FACTORY_API_URL", srv.URL)
	t.Setenv("FACTORY_TOKEN", "s3cret")

	out, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 order(s)")
	assert.Contains(t, out, "VEG-20250101-001")
	assert.Equal(t, int32(0), acks.Load())

	t.Setenv("FACTORY_TOKEN", "wrong")
	_, err = execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected")
}

func TestRunOnce(t *testing.T) {
	var acks atomic.Int32
	srv := fakeStore(t, &acks)
	dir := t.TempDir()
	t.Setenv("FACTORY_API_URL", srv.URL)
	t.Setenv("FACTORY_TOKEN", "s3cret")
	t.Setenv("FACTORY_PRINTER", "file:"+dir)
	t.Setenv("FACTORY_DEDUP", "sqlite:"+filepath.Join(dir, "printed.db"))

	out, err := execute(t, "run", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "printed 1")
	assert.Equal(t, int32(1), acks.Load())

	tickets, err := filepath.Glob(filepath.Join(dir, "siparis_VEG-20250101-001_*.txt"))
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	b, err := os.ReadFile(tickets[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "DİLİM PASTALAR (1)")

	// the sqlite ledger survives the restart
	out, err = execute(t, "run", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped 1")
	assert.Equal(t, int32(1), acks.Load())
}

func TestTestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FACTORY_TOKEN", "s3cret")
	t.Setenv("FACTORY_PRINTER", "file:"+dir)

	out, err := execute(t, "test-print")
	require.NoError(t, err)
	assert.Contains(t, out, "test page sent")

	pages, err := filepath.Glob(filepath.Join(dir, "siparis_TEST_*.txt"))
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("FACTORY_TOKEN", "")
	_, err := execute(t, "check")
	assert.Error(t, err)
}
