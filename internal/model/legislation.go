package model

import (
	"database/sql"
	"time"
)

// SourceType identifies which upstream system a record came from.
type SourceType string

const (
	SourceFederal   SourceType = "federal"
	SourceState     SourceType = "state"
	SourceExecutive SourceType = "executive"
)

// Status is the normalized lifecycle state of a piece of legislation.
type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSigned  Status = "signed"
	StatusVetoed  Status = "vetoed"
)

// Legislation represents the current state of one legislative record.
// ID is derived from the source's natural key and is the sole identity:
// re-scraping the same upstream item always regenerates the same ID.
type Legislation struct {
	ID             string
	SourceType     SourceType
	Title          string
	Summary        string
	Status         Status
	IntroducedDate sql.NullTime
	LastActionDate sql.NullTime
	SourceURL      string
	ExtraData      ExtraData
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LegislativeAction is one entry in the append-only audit trail of a
// Legislation record. Rows are created when a merge detects a status
// transition or when a source reports a discrete action; they are never
// updated afterwards.
type LegislativeAction struct {
	ID            int64
	LegislationID string
	ActionDate    time.Time
	ActionType    string
	Description   string
	OldStatus     Status
	NewStatus     Status
	CreatedAt     time.Time
}

// ActionTypeStatusChange marks actions emitted by the merge engine when
// a record's status differs from the previously stored value.
const ActionTypeStatusChange = "status_change"
