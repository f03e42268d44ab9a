package model

import "time"

// StatusTransition describes the status change, if any, detected while
// merging a freshly fetched record into stored state.
type StatusTransition struct {
	Old     Status
	New     Status
	Changed bool
}

// Merge overwrites the stored record's fields with the freshly fetched
// values, field by field. Identity fields (ID, SourceType, CreatedAt)
// are preserved from the stored record; UpdatedAt is refreshed to now.
// The returned transition reports whether the status changed, so the
// caller can record exactly one audit action per transition.
func Merge(stored, fetched *Legislation, now time.Time) StatusTransition {
	transition := StatusTransition{
		Old:     stored.Status,
		New:     fetched.Status,
		Changed: stored.Status != fetched.Status,
	}

	stored.Title = fetched.Title
	stored.Summary = fetched.Summary
	stored.Status = fetched.Status
	stored.IntroducedDate = fetched.IntroducedDate
	stored.LastActionDate = fetched.LastActionDate
	stored.SourceURL = fetched.SourceURL
	stored.ExtraData = fetched.ExtraData
	stored.UpdatedAt = now

	return transition
}
