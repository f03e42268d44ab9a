package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
)

const statePageSize = 100

// jurisdictionSpec is the static per-state configuration: endpoint,
// credential requirement and rate-limit budget.
type jurisdictionSpec struct {
	requiresKey    bool
	bearerAuth     bool
	callsPerWindow int
	window         time.Duration
}

var jurisdictions = map[string]jurisdictionSpec{
	"NY": {requiresKey: true, bearerAuth: true, callsPerWindow: 1000, window: time.Hour},
	"CA": {requiresKey: false, callsPerWindow: 100, window: time.Hour},
}

// StateScraper ingests bills from one state legislature API. Each
// jurisdiction has its own fetch routine; construction fails for
// unknown codes and for configured-but-keyless jurisdictions.
//
// Unlike the federal and executive sources, New York uses a full
// refresh: all stored NY records are deleted and the fresh set is
// inserted in one transaction, instead of per-record merge.
type StateScraper struct {
	baseScraper
	client       *Client
	jurisdiction string
}

// NewStateScraper resolves the jurisdiction's configuration and
// validates its credential eagerly.
func NewStateScraper(settings *config.Settings, store RecordStore, jurisdiction string) (*StateScraper, error) {
	jurisdiction = strings.ToUpper(jurisdiction)

	cfg, ok := jurisdictions[jurisdiction]
	if !ok {
		return nil, fmt.Errorf("jurisdiction %s not supported", jurisdiction)
	}

	baseURL, apiKey := jurisdictionSettings(settings, jurisdiction)
	if cfg.requiresKey && apiKey == "" {
		return nil, &MissingCredentialError{Source: jurisdiction + " legislature"}
	}

	return &StateScraper{
		baseScraper:  newBaseScraper(store, "state-"+strings.ToLower(jurisdiction)),
		jurisdiction: jurisdiction,
		client: NewClient(ClientConfig{
			Source:         jurisdiction + " legislature",
			BaseURL:        baseURL,
			APIKey:         apiKey,
			BearerAuth:     cfg.bearerAuth,
			CallsPerWindow: cfg.callsPerWindow,
			Window:         cfg.window,
		}),
	}, nil
}

func jurisdictionSettings(settings *config.Settings, jurisdiction string) (baseURL, apiKey string) {
	switch jurisdiction {
	case "NY":
		return settings.NYLegislatureBaseURL, settings.NYLegislatureAPIKey
	case "CA":
		return settings.CALegislatureBaseURL, ""
	default:
		return "", ""
	}
}

func (s *StateScraper) Source() model.SourceType { return model.SourceState }
func (s *StateScraper) Name() string             { return "state-" + strings.ToLower(s.jurisdiction) }

// Scrape dispatches to the jurisdiction-specific routine.
func (s *StateScraper) Scrape(ctx context.Context) ([]model.Legislation, error) {
	switch s.jurisdiction {
	case "NY":
		return s.scrapeNY(ctx)
	default:
		return nil, fmt.Errorf("scraping not implemented for jurisdiction %s", s.jurisdiction)
	}
}

// nySenateResponse is the NY Senate OpenLegislation bills payload.
type nySenateResponse struct {
	Bills []nySenateBill `json:"bills"`
}

type nySenateBill struct {
	PrintNo       string `json:"printNo"`
	Session       int    `json:"session"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Status        string `json:"status"`
	PublishedDate string `json:"publishedDate"`
	URL           string `json:"url"`
}

// scrapeNY fetches the current session's bills and replaces the stored
// NY data wholesale. The delete and reinsert happen in one transaction:
// if reinsertion fails partway, the prior NY data stays fully intact.
// The delete is scoped to NY so other jurisdictions are untouched.
func (s *StateScraper) scrapeNY(ctx context.Context) ([]model.Legislation, error) {
	var records []model.Legislation

	for offset := 0; ; offset += statePageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(statePageSize))
		params.Set("offset", strconv.Itoa(offset))

		var resp nySenateResponse
		if err := s.client.GetJSON(ctx, "bills/current", params, &resp); err != nil {
			return nil, err
		}
		if len(resp.Bills) == 0 {
			break
		}

		for _, item := range resp.Bills {
			rec, err := s.normalizeNY(item)
			if err != nil {
				s.errLogger.Printf("%v", err)
				continue
			}
			records = append(records, *rec)
		}
	}

	s.logger.Printf("replacing NY records with %d freshly fetched bills", len(records))
	if err := s.store.ReplaceJurisdiction(ctx, s.jurisdiction, records); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return records, nil
}

func (s *StateScraper) normalizeNY(item nySenateBill) (*model.Legislation, error) {
	if item.PrintNo == "" {
		return nil, &MalformedItemError{
			NaturalKey: "ny/" + item.Title,
			Err:        fmt.Errorf("missing print number"),
		}
	}
	if item.Title == "" {
		return nil, &MalformedItemError{
			NaturalKey: "ny/" + item.PrintNo,
			Err:        fmt.Errorf("missing title"),
		}
	}

	return &model.Legislation{
		ID:             model.StateID(s.jurisdiction, item.PrintNo),
		SourceType:     model.SourceState,
		Title:          item.Title,
		Summary:        item.Summary,
		Status:         InferStatus(item.Status, ""),
		IntroducedDate: parseDate(item.PublishedDate),
		LastActionDate: parseDate(item.PublishedDate),
		SourceURL:      item.URL,
		ExtraData: model.ExtraData{
			"jurisdiction": s.jurisdiction,
			"print_no":     item.PrintNo,
			"session":      item.Session,
		},
	}, nil
}
