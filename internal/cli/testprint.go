package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTestPrintCommand creates the test-print command.
func NewTestPrintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test-print",
		Short: "Print a test page on the configured printer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeLedger, err := newPoller(cmd.Context(), rootOpts.cfg)
			if err != nil {
				return err
			}
			defer closeLedger()
			if err := p.TestPrint(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "test page sent to", rootOpts.cfg.PrintSink)
			return nil
		},
	}
}
