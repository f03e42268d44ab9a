package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/jjenkins/legtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoggers() (*log.Logger, *log.Logger) {
	quiet := log.New(io.Discard, "", 0)
	return quiet, quiet
}

func testRecord(id string, status model.Status) *model.Legislation {
	return &model.Legislation{
		ID:         id,
		SourceType: model.SourceFederal,
		Title:      "Bill " + id,
		Status:     status,
	}
}

func TestSessionFlushesEveryBatchSize(t *testing.T) {
	store := newFakeStore()
	logger, errLogger := testLoggers()
	sess := newSession(store, logger, errLogger)
	defer sess.close()

	for i := 0; i < 25; i++ {
		rec := testRecord(fmt.Sprintf("federal_118_hr_%d", i), model.StatusPending)
		require.NoError(t, sess.save(context.Background(), rec))
	}
	assert.Equal(t, 2, store.commits, "two full batches should have committed mid-scrape")
	assert.Len(t, store.records, 20)

	require.NoError(t, sess.flush())
	assert.Equal(t, 3, store.commits)
	assert.Len(t, store.records, 25)
	assert.Equal(t, 25, sess.Created)
}

func TestSessionLazyAcquisition(t *testing.T) {
	store := newFakeStore()
	logger, errLogger := testLoggers()
	sess := newSession(store, logger, errLogger)

	// Never saved anything: close must be safe and must not have
	// acquired a batch.
	sess.close()
	require.NoError(t, sess.flush())
	assert.Equal(t, 0, store.beginCalls)

	require.NoError(t, sess.save(context.Background(), testRecord("a", model.StatusPending)))
	assert.Equal(t, 1, store.beginCalls)
	sess.close()
}

func TestSessionCloseRollsBackPending(t *testing.T) {
	store := newFakeStore()
	logger, errLogger := testLoggers()
	sess := newSession(store, logger, errLogger)

	for i := 0; i < 3; i++ {
		require.NoError(t, sess.save(context.Background(), testRecord(fmt.Sprintf("r%d", i), model.StatusPending)))
	}
	sess.close()

	assert.Equal(t, 1, store.rollbacks)
	assert.Empty(t, store.records, "uncommitted writes must not become visible")
}

func TestSessionCommitFailureIsPersistenceError(t *testing.T) {
	store := newFakeStore()
	store.failCommits = 1
	logger, errLogger := testLoggers()
	sess := newSession(store, logger, errLogger)
	defer sess.close()

	var err error
	for i := 0; i < batchSize; i++ {
		err = sess.save(context.Background(), testRecord(fmt.Sprintf("r%d", i), model.StatusPending))
		if err != nil {
			break
		}
	}

	require.Error(t, err)
	var perr *PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Empty(t, store.records)
}

func TestSessionUpsertFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	store.failUpsert = true
	logger, errLogger := testLoggers()
	sess := newSession(store, logger, errLogger)
	defer sess.close()

	err := sess.save(context.Background(), testRecord("r0", model.StatusPending))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, store.rollbacks)
}

func TestSessionMergeEmitsOneActionPerTransition(t *testing.T) {
	store := newFakeStore()
	logger, errLogger := testLoggers()

	run := func(status model.Status) {
		sess := newSession(store, logger, errLogger)
		defer sess.close()
		require.NoError(t, sess.save(context.Background(), testRecord("federal_118_hr_1", status)))
		require.NoError(t, sess.flush())
	}

	run(model.StatusActive)
	require.Len(t, store.records, 1)
	assert.Empty(t, store.actions, "insert must not produce an action")

	// Re-run with unchanged data: no new records, no spurious actions.
	run(model.StatusActive)
	assert.Len(t, store.records, 1)
	assert.Empty(t, store.actions)

	// Status change: exactly one action documenting old -> new.
	run(model.StatusSigned)
	require.Len(t, store.actions, 1)
	assert.Equal(t, model.StatusActive, store.actions[0].OldStatus)
	assert.Equal(t, model.StatusSigned, store.actions[0].NewStatus)
	assert.Equal(t, model.ActionTypeStatusChange, store.actions[0].ActionType)
	assert.Equal(t, model.StatusSigned, store.records["federal_118_hr_1"].Status)
}
