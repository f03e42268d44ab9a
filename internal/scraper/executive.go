package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/legtrack/internal/config"
	"github.com/jjenkins/legtrack/internal/model"
)

const executivePageSize = 100

// administration is a fixed presidential date range. The president is
// attributed from this table, not from the upstream item, because the
// upstream record may omit or misstate it. An empty End means the
// administration is still sitting.
type administration struct {
	President string
	Start     string
	End       string
}

// administrations partition the executive-order fetch, oldest first.
var administrations = []administration{
	{President: "Barack Obama", Start: "2009-01-20", End: "2017-01-20"},
	{President: "Donald Trump", Start: "2017-01-20", End: "2021-01-20"},
	{President: "Joe Biden", Start: "2021-01-20", End: "2025-01-20"},
	{President: "Donald Trump", Start: "2025-01-20", End: ""},
}

// FederalRegisterScraper ingests executive orders from the Federal
// Register API. The API needs no credential.
type FederalRegisterScraper struct {
	baseScraper
	client *Client
}

// NewFederalRegisterScraper builds the executive-order scraper.
func NewFederalRegisterScraper(settings *config.Settings, store RecordStore) *FederalRegisterScraper {
	return &FederalRegisterScraper{
		baseScraper: newBaseScraper(store, "fedreg"),
		client: NewClient(ClientConfig{
			Source:         "Federal Register",
			BaseURL:        settings.FederalRegisterBaseURL,
			CallsPerWindow: 1000,
			Window:         time.Hour,
		}),
	}
}

func (s *FederalRegisterScraper) Source() model.SourceType { return model.SourceExecutive }
func (s *FederalRegisterScraper) Name() string             { return "executive" }

// federalRegisterResponse is the Federal Register documents payload.
type federalRegisterResponse struct {
	Results []federalRegisterDocument `json:"results"`
}

type federalRegisterDocument struct {
	DocumentNumber       string `json:"document_number"`
	ExecutiveOrderNumber string `json:"executive_order_number"`
	Title                string `json:"title"`
	Abstract             string `json:"abstract"`
	HTMLURL              string `json:"html_url"`
	SigningDate          string `json:"signing_date"`
	PublicationDate      string `json:"publication_date"`
	Citation             string `json:"citation"`
}

// Scrape fetches executive orders one administration range at a time,
// paging until an empty page terminates the range. A failed page logs
// and breaks that range rather than retrying indefinitely.
func (s *FederalRegisterScraper) Scrape(ctx context.Context) ([]model.Legislation, error) {
	sess := newSession(s.store, s.logger, s.errLogger)
	defer sess.close()

	var records []model.Legislation
	for _, admin := range administrations {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		s.logger.Printf("scraping executive orders: %s (%s..%s)", admin.President, admin.Start, admin.End)
		if err := s.scrapeAdministration(ctx, sess, admin, &records); err != nil {
			var perr *PersistenceError
			if errors.As(err, &perr) {
				return records, err
			}
			s.errLogger.Printf("administration %s: %v", admin.President, err)
			continue
		}
	}

	if err := sess.flush(); err != nil {
		return records, err
	}

	s.logger.Printf("executive: %d records (%d new, %d updated)",
		len(records), sess.Created, sess.Updated)
	return records, nil
}

// scrapeAdministration pages through one administration's orders.
func (s *FederalRegisterScraper) scrapeAdministration(ctx context.Context, sess *session, admin administration, out *[]model.Legislation) error {
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("conditions[type]", "PRESDOCU")
		params.Set("conditions[presidential_document_type]", "executive_order")
		params.Set("conditions[signing_date][gte]", admin.Start)
		if admin.End != "" {
			params.Set("conditions[signing_date][lte]", admin.End)
		}
		params.Set("order", "oldest")
		params.Set("per_page", strconv.Itoa(executivePageSize))
		params.Set("page", strconv.Itoa(page))

		var resp federalRegisterResponse
		if err := s.client.GetJSON(ctx, "documents", params, &resp); err != nil {
			// Break this range's pagination; the next range still runs.
			s.errLogger.Printf("page %d: %v", page, err)
			return nil
		}
		if len(resp.Results) == 0 {
			return nil
		}

		for _, item := range resp.Results {
			rec, err := s.normalize(admin, item)
			if err != nil {
				s.errLogger.Printf("%v", err)
				continue
			}
			if err := sess.save(ctx, rec); err != nil {
				return err
			}
			*out = append(*out, *rec)
		}
	}
}

// normalize converts one Federal Register document into the canonical
// record shape. Publication implies signature, so status is always
// signed; the signing date is the order's only event and populates both
// date fields, falling back to the publication date.
func (s *FederalRegisterScraper) normalize(admin administration, item federalRegisterDocument) (*model.Legislation, error) {
	identifier := item.ExecutiveOrderNumber
	if identifier == "" {
		identifier = item.DocumentNumber
	}
	if identifier == "" {
		return nil, &MalformedItemError{
			NaturalKey: "executive/" + item.Title,
			Err:        fmt.Errorf("missing document identifier"),
		}
	}
	if item.Title == "" {
		return nil, &MalformedItemError{
			NaturalKey: "executive/" + identifier,
			Err:        fmt.Errorf("missing title"),
		}
	}

	orderNumber := extractOrderNumber(identifier)

	signed := parseDate(item.SigningDate)
	if !signed.Valid {
		signed = parseDate(item.PublicationDate)
	}

	return &model.Legislation{
		ID:             model.ExecutiveID(orderNumber),
		SourceType:     model.SourceExecutive,
		Title:          item.Title,
		Summary:        item.Abstract,
		Status:         model.StatusSigned,
		IntroducedDate: signed,
		LastActionDate: signed,
		SourceURL:      item.HTMLURL,
		ExtraData: model.ExtraData{
			"executive_order_number": orderNumber,
			"document_number":        item.DocumentNumber,
			"president":              admin.President,
			"citation":               item.Citation,
		},
	}, nil
}

// extractOrderNumber strips non-digit characters from a document
// identifier. If no digits remain, the raw identifier is used as the
// uniqueness suffix instead.
func extractOrderNumber(identifier string) string {
	var digits strings.Builder
	for _, r := range identifier {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return identifier
	}
	return digits.String()
}
