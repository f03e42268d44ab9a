package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateScraperUnknownJurisdiction(t *testing.T) {
	_, err := NewStateScraper(&config.Settings{}, newFakeStore(), "ZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZZ")

	var missing *MissingCredentialError
	assert.False(t, errors.As(err, &missing), "unknown jurisdiction is not a credential problem")
}

func TestNewStateScraperMissingKey(t *testing.T) {
	_, err := NewStateScraper(&config.Settings{}, newFakeStore(), "NY")

	var missing *MissingCredentialError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Error(), "NY")
}

func TestStateScraperLowercaseCodeAccepted(t *testing.T) {
	s, err := NewStateScraper(&config.Settings{NYLegislatureAPIKey: "k"}, newFakeStore(), "ny")
	require.NoError(t, err)
	assert.Equal(t, "state-ny", s.Name())
	assert.Equal(t, model.SourceState, s.Source())
}

func TestStateScraperNotImplementedJurisdiction(t *testing.T) {
	// CA is configured (no key required) but has no fetch routine: it
	// must say so rather than silently returning nothing.
	s, err := NewStateScraper(&config.Settings{}, newFakeStore(), "CA")
	require.NoError(t, err)

	_, err = s.Scrape(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
	assert.Contains(t, err.Error(), "CA")
}

func newTestStateScraper(t *testing.T, baseURL string, store RecordStore) *StateScraper {
	t.Helper()

	s, err := NewStateScraper(&config.Settings{
		NYLegislatureAPIKey:  "ny-key",
		NYLegislatureBaseURL: baseURL,
	}, store, "NY")
	require.NoError(t, err)

	s.logger, s.errLogger = testLoggers()
	s.client.backoff = time.Millisecond
	return s
}

func nySenateTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bills/current", r.URL.Path)
		require.Equal(t, "Bearer ny-key", r.Header.Get("Authorization"))

		if r.URL.Query().Get("offset") != "0" {
			fmt.Fprint(w, `{"bills": []}`)
			return
		}

		fmt.Fprint(w, `{
			"bills": [
				{
					"printNo": "S1234",
					"session": 2025,
					"title": "Housing Stability Act",
					"summary": "Relates to rent stabilization.",
					"status": "Passed Senate",
					"publishedDate": "2025-01-08",
					"url": "https://legislation.nysenate.gov/S1234"
				},
				{
					"printNo": "",
					"title": "Orphan bill"
				}
			]
		}`)
	}))
}

func TestStateScraperFullRefresh(t *testing.T) {
	srv := nySenateTestServer(t)
	defer srv.Close()

	store := newFakeStore()

	// Pre-existing data: one stale NY bill and one NJ bill. The full
	// refresh replaces NY wholesale but must never touch NJ.
	store.records["state_ny_s9999"] = &model.Legislation{
		ID:         "state_ny_s9999",
		SourceType: model.SourceState,
		ExtraData:  model.ExtraData{"jurisdiction": "NY"},
	}
	store.records["state_nj_a100"] = &model.Legislation{
		ID:         "state_nj_a100",
		SourceType: model.SourceState,
		ExtraData:  model.ExtraData{"jurisdiction": "NJ"},
	}

	s := newTestStateScraper(t, srv.URL, store)

	records, err := s.Scrape(context.Background())
	require.NoError(t, err)

	// The print-number-less bill is skipped.
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "state_ny_s1234", rec.ID)
	assert.Equal(t, model.SourceState, rec.SourceType)
	assert.Equal(t, model.StatusPassed, rec.Status)
	assert.Equal(t, "NY", rec.ExtraData["jurisdiction"])

	require.Equal(t, []string{"NY"}, store.replaceCalls)
	assert.Contains(t, store.records, "state_ny_s1234")
	assert.NotContains(t, store.records, "state_ny_s9999", "stale NY data is replaced")
	assert.Contains(t, store.records, "state_nj_a100", "other jurisdictions stay intact")
}

func TestStateScraperFullRefreshFailureIsPersistenceError(t *testing.T) {
	srv := nySenateTestServer(t)
	defer srv.Close()

	store := newFakeStore()
	store.failReplace = true
	store.records["state_ny_s9999"] = &model.Legislation{
		ID:         "state_ny_s9999",
		SourceType: model.SourceState,
		ExtraData:  model.ExtraData{"jurisdiction": "NY"},
	}

	s := newTestStateScraper(t, srv.URL, store)

	_, err := s.Scrape(context.Background())

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	// Atomicity: the failed refresh left the prior data fully intact.
	assert.Contains(t, store.records, "state_ny_s9999")
}

func TestStateScraperFetchFailurePreservesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := newFakeStore()
	store.records["state_ny_s9999"] = &model.Legislation{
		ID:         "state_ny_s9999",
		SourceType: model.SourceState,
		ExtraData:  model.ExtraData{"jurisdiction": "NY"},
	}

	s := newTestStateScraper(t, srv.URL, store)

	_, err := s.Scrape(context.Background())

	var fetchErr *TransientFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Empty(t, store.replaceCalls, "a failed fetch must not trigger the delete")
	assert.Contains(t, store.records, "state_ny_s9999")
}
