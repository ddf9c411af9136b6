package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/events"
	"github.com/iiroan/formwatch/internal/metrics"
	"github.com/iiroan/formwatch/internal/server"
	"github.com/iiroan/formwatch/internal/version"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the availability and form-session service",
	Long: `Serve the formwatch HTTP API:

  GET    /healthz
  GET    /metrics
  GET    /v1/availability/{kind}?value=...
  POST   /v1/claims/{kind}          {"value": "..."}
  DELETE /v1/claims/{kind}?value=...
  GET    /v1/forms/ws               websocket form session

Claims live in the configured store. Availability answers come from the
store unless checker.backend is random.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Checker.Backend == "http" {
		return fmt.Errorf("serve cannot use the http checker; set checker.backend to store or random")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var checker avail.Checker = avail.NewStoreChecker(st, cfg.Checker.Timeout.Duration, logger)
	if cfg.Checker.Backend == "random" {
		be, err := openBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		checker = be.checker
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPipeline("formwatch", registry)

	formOpts, err := formOptions(cfg, logger)
	if err != nil {
		return err
	}

	opts := server.Options{
		Checker:      checker,
		Store:        st,
		Gatherer:     registry,
		Metrics:      m,
		FormOptions:  formOpts,
		EventsPrefix: cfg.Events.Subject,
		Logger:       logger,
	}
	if cfg.Events.Enabled {
		nc, err := events.Connect(cfg.Events.URL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		opts.Events = nc
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(opts).HTTPServer(addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr, "checker", cfg.Checker.Backend, "store", cfg.Store.Backend, "version", version.Get().Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
