package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/sawari/config"
	"github.com/c360studio/sawari/processor/assembler"
)

func serveCmd(configPath, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assembler as a JetStream processor",
		Long: `Serve consumes vehicle assembly requests from JetStream and
publishes assembled records back to the stream. Requests carry one
catalog car each and arrive on vehicle.assemble.>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cfg, logger)
		},
	}

	return cmd
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	componentConfig := assembler.DefaultConfig()
	componentConfig.RecordSubject = cfg.Sink.Subject
	componentConfig.FetchTimeout = cfg.Crawl.FetchTimeout
	componentConfig.FetchConcurrency = cfg.Crawl.FetchConcurrency
	componentConfig.Retries = cfg.Crawl.Retries
	componentConfig.RetryBackoff = cfg.Crawl.RetryBackoff
	componentConfig.CacheTTL = cfg.Crawl.CacheTTL
	componentConfig.MaxContentSize = cfg.Crawl.MaxContentSize
	componentConfig.UserAgent = cfg.Crawl.UserAgent
	componentConfig.EntityDeadline = cfg.Crawl.EntityDeadline
	componentConfig.ExcludeTabs = cfg.Tabs.Exclude

	if err := ensureStream(ctx, client, componentConfig, logger); err != nil {
		return err
	}

	rawConfig, err := json.Marshal(componentConfig)
	if err != nil {
		return fmt.Errorf("marshal component config: %w", err)
	}

	deps := component.Dependencies{
		NATSClient: client,
		Logger:     logger,
	}
	discoverable, err := assembler.NewComponent(rawConfig, deps)
	if err != nil {
		return fmt.Errorf("create assembler component: %w", err)
	}
	comp := discoverable.(*assembler.Component)

	if err := comp.Initialize(); err != nil {
		return fmt.Errorf("initialize assembler: %w", err)
	}
	if err := comp.Start(ctx); err != nil {
		return fmt.Errorf("start assembler: %w", err)
	}

	logger.Info("Sawari assembler ready", "version", Version)

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := comp.Stop(30 * time.Second); err != nil {
		logger.Warn("Assembler did not stop cleanly", "error", err)
	}
	return nil
}

// ensureStream makes sure the vehicle stream and durable consumer
// exist before the component starts consuming.
func ensureStream(ctx context.Context, client *natsclient.Client, cfg assembler.Config, logger *slog.Logger) error {
	js, err := client.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{"vehicle.>"},
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", cfg.StreamName, err)
	}

	_, err = stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          cfg.ConsumerName,
		Durable:       cfg.ConsumerName,
		FilterSubject: "vehicle.assemble.>",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("ensure consumer %s: %w", cfg.ConsumerName, err)
	}

	logger.Debug("JetStream stream ready", "stream", cfg.StreamName, "consumer", cfg.ConsumerName)
	return nil
}

// connectToNATS connects using configured URLs with an environment
// variable override.
func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURLs := "nats://localhost:4222"

	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURLs = envURL
	} else if envURL := os.Getenv("SAWARI_NATS_URL"); envURL != "" {
		natsURLs = envURL
	} else if len(cfg.NATS.URLs) > 0 {
		natsURLs = strings.Join(cfg.NATS.URLs, ",")
	}

	logger.Info("Connecting to NATS", "url", natsURLs)

	name := cfg.NATS.Name
	if name == "" {
		name = appName
	}

	client, err := natsclient.NewClient(natsURLs,
		natsclient.WithName(name),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	logger.Info("Connected to NATS", "url", natsURLs)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("cannot reach NATS at %s (is the server running?): %w", url, err)
	}
	return fmt.Errorf("connect to NATS at %s: %w", url, err)
}
