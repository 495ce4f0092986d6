package cli

import (
	"context"

	"factory-dispatch/internal/config"
	"factory-dispatch/internal/dedup"
	"factory-dispatch/internal/infra"
	"factory-dispatch/internal/poller"
	"factory-dispatch/internal/printsink"
	"factory-dispatch/internal/ticket"
)

func newOrderStore(cfg config.Printer) *infra.OrderStoreClient {
	var tokens infra.TokenSource = infra.SecretToken(cfg.Token)
	if cfg.AuthMode == "jwt" {
		tokens = infra.SignedToken{Secret: cfg.Token, Site: cfg.Site}
	}
	return infra.NewOrderStoreClient(cfg.APIURL, tokens, cfg.RequestTimeout)
}

func newFormatter(cfg config.Printer) *ticket.Formatter {
	opts := ticket.DefaultOptions()
	opts.Width = cfg.TicketWidth
	if cfg.OrganizationName != "" {
		opts.OrganizationName = cfg.OrganizationName
	}
	if cfg.TicketTitle != "" {
		opts.Title = cfg.TicketTitle
	}
	return ticket.NewFormatter(opts)
}

// newPoller wires the poller from configuration. The returned func releases
// the dedup ledger.
func newPoller(ctx context.Context, cfg config.Printer) (*poller.Poller, func(), error) {
	sink, err := printsink.Open(cfg.PrintSink)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := dedup.Open(ctx, cfg.Dedup)
	if err != nil {
		return nil, nil, err
	}

	fallback := ticket.PrimaryCakes
	if cfg.UncategorizedDefault {
		fallback = ticket.Uncategorized
	}

	p := poller.New(newOrderStore(cfg), ledger, sink,
		ticket.NewClassifier(fallback),
		newFormatter(cfg),
		poller.Config{
			Interval:     cfg.CheckInterval,
			ErrorBackoff: cfg.ErrorBackoff,
			LookbackDays: cfg.LookbackDays,
			PrintTimeout: cfg.RequestTimeout,
		})
	return p, func() { _ = ledger.Close() }, nil
}
