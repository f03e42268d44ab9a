package model

import (
	"fmt"
	"strings"
)

// Record IDs are derived from each source's natural key so that
// re-scraping the same upstream item is an update, never a duplicate.
// Components are lower-cased and stripped of whitespace to keep the
// derivation stable across upstream formatting drift.

// FederalID derives the ID for a congressional bill.
func FederalID(congress, billType, billNumber string) string {
	return fmt.Sprintf("federal_%s_%s_%s",
		normalizeKey(congress), normalizeKey(billType), normalizeKey(billNumber))
}

// ExecutiveID derives the ID for an executive order.
func ExecutiveID(orderNumber string) string {
	return fmt.Sprintf("executive_%s", normalizeKey(orderNumber))
}

// StateID derives the ID for a state bill from its jurisdiction code
// and print number.
func StateID(jurisdiction, printNumber string) string {
	return fmt.Sprintf("state_%s_%s", normalizeKey(jurisdiction), normalizeKey(printNumber))
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
