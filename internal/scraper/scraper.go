package scraper

import (
	"context"
	"log"
	"os"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
)

// Scraper is the contract every source implements: fetch raw items from
// one upstream, normalize them into Legislation records, and persist
// them. Scrape is restartable; each invocation re-fetches from scratch
// and returns the finite set of records it processed.
type Scraper interface {
	Source() model.SourceType
	Name() string
	Scrape(ctx context.Context) ([]model.Legislation, error)
}

// RecordStore is the persistence surface scrapers depend on. The
// Postgres store implements it; tests substitute an in-memory fake.
type RecordStore interface {
	BeginBatch(ctx context.Context) (RecordBatch, error)
	ClearSource(ctx context.Context, source model.SourceType) error

	// ReplaceJurisdiction atomically deletes all state records for one
	// jurisdiction and inserts the fresh set; on any failure the prior
	// data is left fully intact.
	ReplaceJurisdiction(ctx context.Context, jurisdiction string, recs []model.Legislation) error
}

// RecordBatch buffers writes inside one open transaction. Upsert
// reports whether the record was created and what status transition, if
// any, the merge detected.
type RecordBatch interface {
	Upsert(ctx context.Context, rec *model.Legislation) (created bool, transition model.StatusTransition, err error)
	Commit() error
	Rollback() error
}

// Constructor builds one scraper. Construction validates prerequisites
// eagerly: a source whose credential is missing fails here with
// MissingCredentialError so orchestration can skip it.
type Constructor func(settings *config.Settings, store RecordStore) (Scraper, error)

// RegisteredSource pairs a source name with its constructor.
type RegisteredSource struct {
	Name string
	New  Constructor
}

// Registry lists every known source in the order the runner scrapes
// them.
func Registry() []RegisteredSource {
	return []RegisteredSource{
		{Name: "federal", New: func(s *config.Settings, st RecordStore) (Scraper, error) {
			return NewCongressScraper(s, st)
		}},
		{Name: "executive", New: func(s *config.Settings, st RecordStore) (Scraper, error) {
			return NewFederalRegisterScraper(s, st), nil
		}},
		{Name: "state-ny", New: func(s *config.Settings, st RecordStore) (Scraper, error) {
			return NewStateScraper(s, st, "NY")
		}},
	}
}

// baseScraper carries the pieces every source shares: the store handle
// and a stdout/stderr logger pair.
type baseScraper struct {
	store     RecordStore
	logger    *log.Logger
	errLogger *log.Logger
}

func newBaseScraper(store RecordStore, name string) baseScraper {
	return baseScraper{
		store:     store,
		logger:    log.New(os.Stdout, "["+name+"] ", log.LstdFlags),
		errLogger: log.New(os.Stderr, "["+name+"] ERROR: ", log.LstdFlags),
	}
}
