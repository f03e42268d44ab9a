package scraper

import (
	"database/sql"
	"strings"
	"time"
)

// dateFormats covers the formats the upstream APIs have been seen to
// emit for the same logical date.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// parseDate parses an upstream date defensively. Missing or unparsable
// dates are valid upstream states: the result is null, never an error,
// so one bad date cannot abort ingestion of the item.
func parseDate(s string) sql.NullTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullTime{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}

	return sql.NullTime{}
}
