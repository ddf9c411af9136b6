package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/config"
	"github.com/iiroan/formwatch/internal/pipeline"
	"github.com/iiroan/formwatch/internal/store"
)

// backend is the availability source a command checks against. store is
// nil unless the checker reads from a claims store.
type backend struct {
	checker avail.Checker
	store   store.Store
}

func (b *backend) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

func openBackend(ctx context.Context, c *config.Config, logger *log.Logger) (*backend, error) {
	timeout := c.Checker.Timeout.Duration

	switch c.Checker.Backend {
	case "store":
		s, err := openStore(ctx, c)
		if err != nil {
			return nil, err
		}
		return &backend{checker: avail.NewStoreChecker(s, timeout, logger), store: s}, nil
	case "http":
		return &backend{checker: avail.NewHTTPChecker(c.Checker.URL, timeout, logger)}, nil
	case "random", "":
		seed := c.Checker.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r := avail.NewRandom(seed)
		if d := c.Checker.EmailLatency.Duration; d > 0 {
			r.EmailLatency = d
		}
		if d := c.Checker.UsernameLatency.Duration; d > 0 {
			r.UsernameLatency = d
		}
		return &backend{checker: r}, nil
	default:
		return nil, fmt.Errorf("unknown checker backend %q", c.Checker.Backend)
	}
}

func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	opts, err := c.StoreOptions()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", opts.Backend, err)
	}
	return s, nil
}

// formOptions turns the form section into pipeline options.
func formOptions(c *config.Config, logger *log.Logger) ([]pipeline.Option, error) {
	kinds, err := c.Kinds()
	if err != nil {
		return nil, err
	}
	overrides, err := c.FieldDebounces()
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithKinds(kinds...),
		pipeline.WithDebounce(c.Form.Debounce.Duration),
		pipeline.WithLogger(logger),
	}
	for kind, d := range overrides {
		opts = append(opts, pipeline.WithFieldDebounce(kind, d))
	}
	return opts, nil
}

// commandContext returns the command's context, or Background when the
// command was invoked from the menu rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
