package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/sawari/catalog"
	"github.com/c360studio/sawari/config"
	"github.com/c360studio/sawari/scrape"
)

const defaultListingIndex = "https://www.cars24.com/new-cars"

func seedCmd(configPath, logLevel *string) *cobra.Command {
	var (
		indexURL string
		outPath  string
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Harvest a seed file from the catalog listing pages",
		Long: `Seed walks the brand cards on the listing index, follows each
brand's listing pages, and writes the collected cars as a JSON seed
file for the crawl command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSeed(ctx, cfg, indexURL, outPath, maxPages, logger)
		},
	}

	cmd.Flags().StringVar(&indexURL, "index", defaultListingIndex, "Listing index URL")
	cmd.Flags().StringVarP(&outPath, "out", "o", "cars_data.json", "Seed file to write")
	cmd.Flags().IntVar(&maxPages, "max-pages", 50, "Maximum listing pages per brand")

	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, indexURL, outPath string, maxPages int, logger *slog.Logger) error {
	fetcher := scrape.NewFetcher(scrape.FetcherOptions{
		Timeout:        cfg.Crawl.GetFetchTimeout(),
		UserAgent:      cfg.Crawl.UserAgent,
		MaxContentSize: cfg.Crawl.MaxContentSize,
		Retries:        cfg.Crawl.Retries,
		RetryBackoff:   cfg.Crawl.GetRetryBackoff(),
		CacheTTL:       cfg.Crawl.GetCacheTTL(),
	})

	content, err := fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return fmt.Errorf("fetch listing index: %w", err)
	}
	brands, err := catalog.ParseBrands(indexURL, content)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		return fmt.Errorf("no brand cards found at %s", indexURL)
	}
	logger.Info("Brand index parsed", "brands", len(brands))

	var cars []catalog.Car
	for _, brand := range brands {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pageURL := brand.URL
		for page := 0; pageURL != "" && page < maxPages; page++ {
			content, err := fetcher.Fetch(ctx, pageURL)
			if err != nil {
				logger.Warn("Failed to fetch listing page", "brand", brand.Name, "url", pageURL, "error", err)
				break
			}
			listing, err := catalog.ParseListing(brand.Name, pageURL, content)
			if err != nil {
				logger.Warn("Failed to parse listing page", "brand", brand.Name, "url", pageURL, "error", err)
				break
			}
			cars = append(cars, listing.Cars...)
			pageURL = listing.NextURL
		}
		logger.Info("Brand crawled", "brand", brand.Name, "cars_so_far", len(cars))
	}

	data, err := json.MarshalIndent(cars, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seed file: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}

	logger.Info("Seed file written", "path", outPath, "cars", len(cars))
	return nil
}
