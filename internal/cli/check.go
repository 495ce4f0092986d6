package cli

import (
	"errors"
	"fmt"

	"factory-dispatch/internal/infra"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Query the order store once and report the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			resp, err := newOrderStore(cfg).FetchOrders(cmd.Context(), infra.FetchParams{Days: cfg.LookbackDays})
			if errors.Is(err, infra.ErrUnauthorized) {
				return fmt.Errorf("token rejected by %s", cfg.APIURL)
			}
			if err != nil {
				return fmt.Errorf("order store unreachable: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s: %d order(s) in the last %d day(s)\n", cfg.APIURL, resp.Count, cfg.LookbackDays)
			for _, o := range resp.Orders {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-15s %s\n", o.OrderNumber, o.BranchName, o.Status)
			}
			return nil
		},
	}
}
