package scraper

import (
	"context"
	"log"

	"github.com/jjenkins/legtrack/internal/model"
)

// batchSize is how many records are buffered before the open
// transaction is committed. Bounds transaction overhead on long scrapes
// without holding one transaction open for the whole run.
const batchSize = 10

// session is the scoped storage handle a scraper owns for one Scrape
// invocation. The underlying batch transaction is acquired lazily on
// first save and must be released on every exit path: callers defer
// close, which rolls back whatever the last flush did not commit.
// Already-committed batches are never undone.
type session struct {
	store   RecordStore
	batch   RecordBatch
	pending int

	logger    *log.Logger
	errLogger *log.Logger

	// stats
	Created     int
	Updated     int
	Transitions int
}

func newSession(store RecordStore, logger, errLogger *log.Logger) *session {
	return &session{store: store, logger: logger, errLogger: errLogger}
}

// save runs one record through the upsert/merge engine, committing the
// batch every batchSize records. A commit failure rolls the pending
// batch back and comes back as PersistenceError, fatal to the scrape.
func (s *session) save(ctx context.Context, rec *model.Legislation) error {
	if s.batch == nil {
		batch, err := s.store.BeginBatch(ctx)
		if err != nil {
			return &PersistenceError{Err: err}
		}
		s.batch = batch
	}

	created, transition, err := s.batch.Upsert(ctx, rec)
	if err != nil {
		s.batch.Rollback()
		s.batch = nil
		s.pending = 0
		return &PersistenceError{Err: err}
	}

	if created {
		s.Created++
	} else {
		s.Updated++
	}
	if transition.Changed {
		s.Transitions++
		s.logger.Printf("  %s: status %s -> %s", rec.ID, transition.Old, transition.New)
	}

	s.pending++
	if s.pending >= batchSize {
		return s.flush()
	}
	return nil
}

// flush commits the open batch, if any. Called by save at batch
// boundaries and once more at the end of every scrape.
func (s *session) flush() error {
	if s.batch == nil {
		return nil
	}

	err := s.batch.Commit()
	s.batch = nil
	s.pending = 0
	if err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// close releases the session. Safe to call whether or not a batch was
// ever acquired; uncommitted writes are rolled back.
func (s *session) close() {
	if s.batch == nil {
		return
	}
	if err := s.batch.Rollback(); err != nil {
		s.errLogger.Printf("failed to roll back pending batch: %v", err)
	}
	s.batch = nil
	s.pending = 0
}
