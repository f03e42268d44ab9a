package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
)

const federalPageSize = 250

// defaultCongresses are the legislative sessions scraped by default.
var defaultCongresses = []string{"117", "118", "119"}

// CongressScraper ingests federal bills from the Congress.gov API,
// iterating a fixed list of congresses and paging through each one's
// bills.
type CongressScraper struct {
	baseScraper
	client     *Client
	congresses []string
}

// NewCongressScraper validates that a Congress.gov API key is
// configured and builds the scraper. A missing key fails construction
// so the runner can skip this source without aborting others.
func NewCongressScraper(settings *config.Settings, store RecordStore) (*CongressScraper, error) {
	if settings.CongressAPIKey == "" {
		return nil, &MissingCredentialError{Source: "Congress.gov"}
	}

	return &CongressScraper{
		baseScraper: newBaseScraper(store, "congress"),
		client: NewClient(ClientConfig{
			Source:         "Congress.gov",
			BaseURL:        settings.CongressBaseURL,
			APIKey:         settings.CongressAPIKey,
			KeyQueryParam:  "api_key",
			CallsPerWindow: 1000,
			Window:         time.Hour,
		}),
		congresses: defaultCongresses,
	}, nil
}

func (s *CongressScraper) Source() model.SourceType { return model.SourceFederal }
func (s *CongressScraper) Name() string             { return "federal" }

// congressBillsResponse is the Congress.gov bill list payload.
type congressBillsResponse struct {
	Bills []congressBill `json:"bills"`

	Pagination struct {
		Count int    `json:"count"`
		Next  string `json:"next"`
	} `json:"pagination"`
}

type congressBill struct {
	Congress       int    `json:"congress"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	Status         string `json:"status"`
	IntroducedDate string `json:"introducedDate"`
	URL            string `json:"congressdotgov_url"`

	LatestAction struct {
		ActionDate string `json:"actionDate"`
		Text       string `json:"text"`
	} `json:"latestAction"`

	Committees []any `json:"committees"`
	Sponsors   []any `json:"sponsors"`
}

// Scrape fetches all bills for every configured congress. A failure in
// one congress is logged and the remaining congresses still run; a
// persistence failure aborts the invocation.
func (s *CongressScraper) Scrape(ctx context.Context) ([]model.Legislation, error) {
	sess := newSession(s.store, s.logger, s.errLogger)
	defer sess.close()

	var records []model.Legislation
	for _, congress := range s.congresses {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		s.logger.Printf("scraping congress %s", congress)
		if err := s.scrapeCongress(ctx, sess, congress, &records); err != nil {
			var perr *PersistenceError
			if errors.As(err, &perr) {
				return records, err
			}
			s.errLogger.Printf("congress %s: %v", congress, err)
			continue
		}
	}

	if err := sess.flush(); err != nil {
		return records, err
	}

	s.logger.Printf("federal: %d records (%d new, %d updated, %d status changes)",
		len(records), sess.Created, sess.Updated, sess.Transitions)
	return records, nil
}

// scrapeCongress pages through one congress's bills via offset
// pagination, upserting each normalized record.
func (s *CongressScraper) scrapeCongress(ctx context.Context, sess *session, congress string, out *[]model.Legislation) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("format", "json")
		params.Set("limit", strconv.Itoa(federalPageSize))
		params.Set("offset", strconv.Itoa(offset))

		var resp congressBillsResponse
		if err := s.client.GetJSON(ctx, "bill/"+congress, params, &resp); err != nil {
			return err
		}
		if len(resp.Bills) == 0 {
			return nil
		}

		for _, item := range resp.Bills {
			rec, err := s.normalize(congress, item)
			if err != nil {
				s.errLogger.Printf("%v", err)
				continue
			}
			if err := sess.save(ctx, rec); err != nil {
				return err
			}
			*out = append(*out, *rec)
		}

		if resp.Pagination.Next == "" {
			return nil
		}
		offset += len(resp.Bills)
	}
}

// normalize converts one raw Congress.gov item into the canonical
// record shape.
func (s *CongressScraper) normalize(congress string, item congressBill) (*model.Legislation, error) {
	naturalKey := fmt.Sprintf("%s/%s/%s", congress, item.Type, item.Number)

	if item.Number == "" || item.Type == "" {
		return nil, &MalformedItemError{
			NaturalKey: naturalKey,
			Err:        fmt.Errorf("missing bill type or number"),
		}
	}
	if item.Title == "" {
		return nil, &MalformedItemError{
			NaturalKey: naturalKey,
			Err:        fmt.Errorf("missing title"),
		}
	}

	return &model.Legislation{
		ID:             model.FederalID(congress, item.Type, item.Number),
		SourceType:     model.SourceFederal,
		Title:          item.Title,
		Summary:        item.Summary,
		Status:         InferStatus(item.Status, item.LatestAction.Text),
		IntroducedDate: parseDate(item.IntroducedDate),
		LastActionDate: parseDate(item.LatestAction.ActionDate),
		SourceURL:      item.URL,
		ExtraData: model.ExtraData{
			"congress":    congress,
			"bill_type":   item.Type,
			"bill_number": item.Number,
			"committees":  item.Committees,
			"sponsors":    item.Sponsors,
		},
	}, nil
}
