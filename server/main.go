package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go-exchange-rate-graph/coinbase"
	"go-exchange-rate-graph/config"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/exchange"
	"go-exchange-rate-graph/graph"
	"go-exchange-rate-graph/http"
	"go-exchange-rate-graph/ingest"
	"go-exchange-rate-graph/logging"
	"os"
	"os/signal"
	"syscall"
	"time"

	nhttp "net/http"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $RATEGRAPH_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger log.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	load := loader(cfg, logger)
	g, err := load(ctx)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	convertService := exchange.NewService(nil)
	convertService = exchange.NewLoggingService(log.With(logger, "component", "convert"), convertService)
	convertService = exchange.NewInstrumentingService(reg, convertService)
	if err := convertService.Reload(ctx, g); err != nil {
		return err
	}

	if cfg.Rates.RefreshInterval > 0 {
		go reloadPeriodically(ctx, cfg.Rates.RefreshInterval, load, convertService, log.With(logger, "component", "reload"))
	}

	handler := http.NewServer(convertService, log.With(logger, "component", "http"), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &nhttp.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.Server.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, nhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// loader returns how to build a fresh graph: from the conversion file when one
// is configured, from coinbase otherwise.
func loader(cfg config.Config, logger log.Logger) func(context.Context) (*graph.Graph, error) {
	if cfg.Rates.File != "" {
		return func(context.Context) (*graph.Graph, error) {
			doc, err := ingest.ParseFile(cfg.Rates.File)
			if err != nil {
				return nil, err
			}
			return ingest.Build(doc.Records)
		}
	}

	coinbaseService := coinbase.NewService(cfg.Rates.Coinbase.URL, cfg.Rates.Coinbase.Timeout)
	coinbaseService = coinbase.NewLoggingService(log.With(logger, "component", "coinbase_rest"), coinbaseService)
	coinbaseService = coinbase.NewCachingService(cfg.Rates.Coinbase.CacheRefresh, log.With(logger, "component", "coinbase_cache"), coinbaseService)
	coinbaseService = coinbase.NewLoggingService(log.With(logger, "component", "coinbase_cache"), coinbaseService)

	bases := make([]domain.Currency, 0, len(cfg.Rates.Coinbase.Bases))
	for _, b := range cfg.Rates.Coinbase.Bases {
		bases = append(bases, domain.Currency(b))
	}

	return func(ctx context.Context) (*graph.Graph, error) {
		records, err := ingest.FromRates(ctx, coinbaseService, bases)
		if err != nil {
			return nil, err
		}
		return ingest.Build(records)
	}
}

// reloadPeriodically rebuilds the graph every interval until ctx is done.
// A failed rebuild keeps the current graph.
func reloadPeriodically(ctx context.Context, interval time.Duration, load func(context.Context) (*graph.Graph, error), s exchange.Service, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g, err := load(ctx)
			if err != nil {
				level.Warn(logger).Log("msg", "reload failed, keeping current rates", "err", err)
				continue
			}
			_ = s.Reload(ctx, g)
		case <-ctx.Done():
			return
		}
	}
}
