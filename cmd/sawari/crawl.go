package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/c360studio/sawari/assembly"
	"github.com/c360studio/sawari/catalog"
	"github.com/c360studio/sawari/config"
	"github.com/c360studio/sawari/scrape"
	"github.com/c360studio/sawari/sink"
)

func crawlCmd(configPath, logLevel *string) *cobra.Command {
	var (
		seedPath string
		outPath  string
		publish  bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Assemble records for every car in a seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outPath != "" {
				cfg.Sink.JSONLPath = outPath
			}
			if !publish {
				cfg.Sink.Subject = ""
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, cfg, seedPath, logger)
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "cars_data.json", "Seed file with catalog cars (JSON array)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output JSONL path (overrides config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also publish records to JetStream")

	return cmd
}

func watchCmd(configPath, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a seed directory and crawl changed seed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			watcher, err := catalog.NewSeedWatcher(cfg.Watch.Root, cfg.Watch.Pattern, cfg.Watch.GetDebounce(), logger)
			if err != nil {
				return fmt.Errorf("create seed watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start seed watcher: %w", err)
			}
			defer watcher.Stop()

			logger.Info("Watching for seed changes", "root", cfg.Watch.Root, "pattern", cfg.Watch.Pattern)

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					if ev.Removed {
						logger.Info("Seed file removed", "path", ev.Path)
						continue
					}
					logger.Info("Seed file changed, crawling", "path", ev.Path)
					if err := runCrawl(ctx, cfg, ev.Path, logger); err != nil {
						logger.Error("Crawl failed", "path", ev.Path, "error", err)
					}
				}
			}
		},
	}

	return cmd
}

// runCrawl assembles every car in the seed file and writes records to
// the configured sinks.
func runCrawl(ctx context.Context, cfg *config.Config, seedPath string, logger *slog.Logger) error {
	logger = logger.With("run_id", uuid.New().String())
	logger.Info("Starting crawl", "seed", seedPath)

	recordSink, cleanup, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := scrape.NewFetcher(scrape.FetcherOptions{
		Timeout:        cfg.Crawl.GetFetchTimeout(),
		UserAgent:      cfg.Crawl.UserAgent,
		MaxContentSize: cfg.Crawl.MaxContentSize,
		Retries:        cfg.Crawl.Retries,
		RetryBackoff:   cfg.Crawl.GetRetryBackoff(),
		CacheTTL:       cfg.Crawl.GetCacheTTL(),
	})

	discovery := assembly.NewDiscovery(
		cfg.Tabs.NavSelector,
		cfg.Tabs.Exclude,
		cfg.Tabs.Keys,
		scrape.NewRegistry(),
		logger,
	)

	emitter := assembly.NewEmitter(recordSink, logger)
	coordinator := assembly.NewCoordinator(emitter, cfg.Crawl.GetEntityDeadline(), logger)
	dispatcher := assembly.NewDispatcher(fetcher, coordinator, cfg.Crawl.FetchConcurrency, logger)
	assembler := assembly.NewAssembler(fetcher, discovery, dispatcher, coordinator, cfg.Crawl.EntityConcurrency, logger)

	source := catalog.NewFileSource(seedPath, logger)
	failures, err := assembler.Run(ctx, source)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	logger.Info("Crawl finished",
		"assembled", coordinator.Assembled(),
		"emitted", emitter.Emitted(),
		"emit_errors", emitter.Errors(),
		"discovery_failures", len(failures))
	for _, f := range failures {
		logger.Warn("Seed not assembled", "entity_id", f.EntityID, "seed_url", f.SeedURL, "reason", f.Reason)
	}

	return nil
}

// buildSink constructs the configured record destinations. The cleanup
// function closes file handles and connections.
func buildSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (assembly.Sink, func(), error) {
	var (
		sinks    []assembly.Sink
		cleanups []func()
	)

	if cfg.Sink.JSONLPath != "" {
		jsonl, err := sink.NewJSONLSink(cfg.Sink.JSONLPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, jsonl)
		cleanups = append(cleanups, func() {
			if err := jsonl.Close(); err != nil {
				logger.Warn("Failed to close output file", "error", err)
			}
		})
		logger.Info("Writing records", "path", cfg.Sink.JSONLPath)
	}

	if cfg.Sink.Subject != "" {
		client, err := connectToNATS(ctx, cfg, logger)
		if err != nil {
			for _, c := range cleanups {
				c()
			}
			return nil, nil, err
		}
		sinks = append(sinks, sink.NewStreamSink(client, cfg.Sink.Subject, appName))
		cleanups = append(cleanups, func() {
			_ = client.Close(context.Background())
		})
		logger.Info("Publishing records", "subject", cfg.Sink.Subject)
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if len(sinks) == 1 {
		return sinks[0], cleanup, nil
	}
	return sink.NewMultiSink(sinks...), cleanup, nil
}
