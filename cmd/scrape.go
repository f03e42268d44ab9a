package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
	"github.com/jjenkins/legtrack/internal/scraper"
	"github.com/jjenkins/legtrack/internal/store"
	"github.com/spf13/cobra"
)

var scrapeClear bool
var scrapeSource string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape legislative records from all upstream sources",
	Long: `Scrape fetches federal bills from Congress.gov, executive orders
from the Federal Register, and state bills from state legislature APIs,
then upserts them into PostgreSQL. Sources run in sequence; a failure in
one source does not prevent the remaining sources from running.

Examples:
  # Scrape every source
  ./legtrack scrape

  # Clear existing data first, then scrape everything
  ./legtrack scrape --clear

  # Scrape only executive orders
  ./legtrack scrape --source executive`,
	Run: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().BoolVar(&scrapeClear, "clear", false, "Delete existing records before scraping")
	scrapeCmd.Flags().StringVarP(&scrapeSource, "source", "s", "", "Scrape only the named source (federal, executive, state-ny)")
}

// scraperStore adapts the concrete Postgres store to the contract the
// scrapers depend on.
type scraperStore struct {
	*store.LegislationStore
}

func (s scraperStore) BeginBatch(ctx context.Context) (scraper.RecordBatch, error) {
	return s.LegislationStore.BeginBatch(ctx)
}

func runScrape(cmd *cobra.Command, args []string) {
	settings := config.Load()
	if settings.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	log.Println("Connecting to database...")
	db, err := store.NewDB(settings.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.InitSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	recordStore := scraperStore{store.NewLegislationStore(db)}

	sources := scraper.Registry()
	if scrapeSource != "" {
		var selected []scraper.RegisteredSource
		for _, src := range sources {
			if src.Name == scrapeSource {
				selected = append(selected, src)
			}
		}
		if len(selected) == 0 {
			log.Fatalf("Unknown source %q", scrapeSource)
		}
		sources = selected
	}

	if scrapeClear {
		log.Println("Clearing existing data...")
		cleared := make(map[model.SourceType]bool)
		for _, src := range sources {
			s, err := src.New(settings, recordStore)
			if err != nil {
				continue
			}
			if cleared[s.Source()] {
				continue
			}
			if err := recordStore.ClearSource(ctx, s.Source()); err != nil {
				log.Fatalf("Failed to clear %s records: %v", s.Source(), err)
			}
			cleared[s.Source()] = true
		}
	}

	failed := 0
	counts := make(map[string]int)

	for _, src := range sources {
		if ctx.Err() != nil {
			log.Println("Scrape cancelled")
			os.Exit(1)
		}

		log.Printf("Scraping %s...", src.Name)

		s, err := src.New(settings, recordStore)
		if err != nil {
			var missing *scraper.MissingCredentialError
			if errors.As(err, &missing) {
				log.Printf("Skipping %s: %v", src.Name, err)
				continue
			}
			log.Printf("Failed to construct %s scraper: %v", src.Name, err)
			failed++
			continue
		}

		records, err := s.Scrape(ctx)
		counts[src.Name] = len(records)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Scrape cancelled")
				break
			}
			log.Printf("Error scraping %s: %v", src.Name, err)
			failed++
			continue
		}

		log.Printf("Found %d %s items", len(records), src.Name)
	}

	log.Println("")
	log.Println("=== Scrape Summary ===")
	for _, src := range sources {
		log.Printf("%-12s %d items", src.Name+":", counts[src.Name])
	}

	if failed > 0 {
		os.Exit(1)
	}
}
