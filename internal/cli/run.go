package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpctl "factory-dispatch/internal/controllers/http"
	"factory-dispatch/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Paused bool
	Once   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll for orders and print them",
		Long: `Start the print loop. Every check interval the order store is queried,
orders not printed yet are printed and acknowledged.

When FACTORY_CONTROL_ADDR is set, a local HTTP API allows status, start,
stop, refresh and test-print.

Example:
  factory-printer run
  factory-printer run --paused
  factory-printer run --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runPrinter(ctx, opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Paused, "paused", false, "start with polling stopped")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "run a single check and exit")

	return cmd
}

func runPrinter(ctx context.Context, opts *RunOptions, cmd *cobra.Command) error {
	cfg := opts.cfg
	p, closeLedger, err := newPoller(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	if opts.Once {
		res := p.Tick(ctx)
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, printed %d, skipped %d, print failures %d, ack failures %d\n",
			res.Fetched, res.Printed, res.Skipped, res.PrintFailed, res.AckFailed)
		return nil
	}

	logger.Info("factory printer starting",
		zap.String("api_url", cfg.APIURL),
		zap.String("printer", cfg.PrintSink),
		zap.String("dedup", cfg.Dedup),
		zap.Duration("interval", cfg.CheckInterval))

	if !opts.Paused {
		p.Start()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(ctx) })

	if cfg.ControlAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		httpctl.NewControlHandler(p).RegisterRoutes(r)
		srv := &http.Server{Addr: cfg.ControlAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("control API listening", zap.String("addr", cfg.ControlAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("factory printer stopped")
	return err
}
