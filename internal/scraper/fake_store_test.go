package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/jjenkins/legtrack/internal/model"
)

// fakeStore is an in-memory RecordStore with transactional batch
// semantics: staged writes become visible only on Commit, so rollback
// and partial-failure behavior can be asserted without Postgres.
type fakeStore struct {
	records map[string]*model.Legislation
	actions []model.LegislativeAction

	beginCalls  int
	commits     int
	rollbacks   int
	failCommits int
	failUpsert  bool

	replaceCalls []string
	failReplace  bool
	cleared      []model.SourceType
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.Legislation)}
}

func (f *fakeStore) BeginBatch(ctx context.Context) (RecordBatch, error) {
	f.beginCalls++
	return &fakeBatch{store: f, pending: make(map[string]*model.Legislation)}, nil
}

func (f *fakeStore) ClearSource(ctx context.Context, source model.SourceType) error {
	for id, rec := range f.records {
		if rec.SourceType == source {
			delete(f.records, id)
		}
	}
	f.cleared = append(f.cleared, source)
	return nil
}

func (f *fakeStore) ReplaceJurisdiction(ctx context.Context, jurisdiction string, recs []model.Legislation) error {
	f.replaceCalls = append(f.replaceCalls, jurisdiction)
	if f.failReplace {
		return errors.New("reinsert failed")
	}

	for id, rec := range f.records {
		if rec.SourceType == model.SourceState && rec.ExtraData["jurisdiction"] == jurisdiction {
			delete(f.records, id)
		}
	}
	for i := range recs {
		cp := recs[i]
		f.records[cp.ID] = &cp
	}
	return nil
}

type fakeBatch struct {
	store          *fakeStore
	pending        map[string]*model.Legislation
	pendingActions []model.LegislativeAction
}

func (b *fakeBatch) Upsert(ctx context.Context, rec *model.Legislation) (bool, model.StatusTransition, error) {
	if b.store.failUpsert {
		return false, model.StatusTransition{}, errors.New("upsert failed")
	}

	now := time.Now()

	var existing *model.Legislation
	if e, ok := b.pending[rec.ID]; ok {
		existing = e
	} else if e, ok := b.store.records[rec.ID]; ok {
		cp := *e
		existing = &cp
	}

	if existing == nil {
		cp := *rec
		cp.CreatedAt = now
		cp.UpdatedAt = now
		b.pending[rec.ID] = &cp
		return true, model.StatusTransition{}, nil
	}

	transition := model.Merge(existing, rec, now)
	b.pending[rec.ID] = existing
	if transition.Changed {
		b.pendingActions = append(b.pendingActions, model.LegislativeAction{
			LegislationID: rec.ID,
			ActionDate:    now,
			ActionType:    model.ActionTypeStatusChange,
			OldStatus:     transition.Old,
			NewStatus:     transition.New,
		})
	}
	return false, transition, nil
}

func (b *fakeBatch) Commit() error {
	if b.store.failCommits > 0 {
		b.store.failCommits--
		return errors.New("commit failed")
	}

	for id, rec := range b.pending {
		b.store.records[id] = rec
	}
	b.store.actions = append(b.store.actions, b.pendingActions...)
	b.store.commits++
	return nil
}

func (b *fakeBatch) Rollback() error {
	b.store.rollbacks++
	b.pending = make(map[string]*model.Legislation)
	b.pendingActions = nil
	return nil
}
