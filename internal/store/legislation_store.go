package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/legtrack/internal/model"
)

const legislationColumns = `id, source_type, title, summary, status,
	introduced_date, last_action_date, source_url, extra_data,
	created_at, updated_at`

// LegislationStore handles database operations for legislation records
// and their action audit trail.
type LegislationStore struct {
	db *sql.DB
}

// NewLegislationStore creates a new LegislationStore.
func NewLegislationStore(db *sql.DB) *LegislationStore {
	return &LegislationStore{db: db}
}

// GetByID retrieves one record, or nil if no record has that ID.
func (s *LegislationStore) GetByID(ctx context.Context, id string) (*model.Legislation, error) {
	query := fmt.Sprintf(`SELECT %s FROM legislation WHERE id = $1`, legislationColumns)

	rec, err := scanLegislation(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get legislation %s: %w", id, err)
	}
	return rec, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Source    model.SourceType
	Status    model.Status
	StartDate time.Time
	EndDate   time.Time
	Page      int
	Limit     int
}

// List returns a page of records plus the total match count.
func (s *LegislationStore) List(ctx context.Context, filter ListFilter) ([]model.Legislation, int, error) {
	var conds []string
	var args []any

	addCond := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.Source != "" {
		addCond("source_type = ?", string(filter.Source))
	}
	if filter.Status != "" {
		addCond("status = ?", string(filter.Status))
	}
	if !filter.StartDate.IsZero() {
		addCond("introduced_date >= ?", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		addCond("introduced_date <= ?", filter.EndDate)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM legislation" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count legislation: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(
		`SELECT %s FROM legislation%s ORDER BY introduced_date DESC NULLS LAST, id LIMIT $%d OFFSET $%d`,
		legislationColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list legislation: %w", err)
	}
	defer rows.Close()

	records, err := collectLegislation(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Search matches the query as a substring of title or summary,
// optionally restricted to one source type.
func (s *LegislationStore) Search(ctx context.Context, q string, source model.SourceType) ([]model.Legislation, error) {
	pattern := "%" + q + "%"

	query := fmt.Sprintf(`
		SELECT %s FROM legislation
		WHERE (title ILIKE $1 OR summary ILIKE $1)`, legislationColumns)
	args := []any{pattern}

	if source != "" {
		query += " AND source_type = $2"
		args = append(args, string(source))
	}
	query += " ORDER BY introduced_date DESC NULLS LAST, id LIMIT 100"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search legislation: %w", err)
	}
	defer rows.Close()

	return collectLegislation(rows)
}

// CountBySource returns the stored record count per source type.
func (s *LegislationStore) CountBySource(ctx context.Context) (map[model.SourceType]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, COUNT(*) FROM legislation GROUP BY source_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SourceType]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[model.SourceType(source)] = count
	}
	return counts, rows.Err()
}

// GetActions returns a record's audit trail, oldest first.
func (s *LegislationStore) GetActions(ctx context.Context, legislationID string) ([]model.LegislativeAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, legislation_id, action_date, action_type, description,
		       old_status, new_status, created_at
		FROM legislative_actions
		WHERE legislation_id = $1
		ORDER BY action_date, id`, legislationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions for %s: %w", legislationID, err)
	}
	defer rows.Close()

	var actions []model.LegislativeAction
	for rows.Next() {
		var a model.LegislativeAction
		var oldStatus, newStatus string
		if err := rows.Scan(&a.ID, &a.LegislationID, &a.ActionDate, &a.ActionType,
			&a.Description, &oldStatus, &newStatus, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		a.OldStatus = model.Status(oldStatus)
		a.NewStatus = model.Status(newStatus)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ClearSource deletes all records of one source type in a single
// transaction. Actions cascade with their records.
func (s *LegislationStore) ClearSource(ctx context.Context, source model.SourceType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM legislation WHERE source_type = $1`, string(source)); err != nil {
		return fmt.Errorf("failed to clear %s records: %w", source, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// ReplaceJurisdiction implements the full-refresh policy for one state
// jurisdiction: delete that jurisdiction's records and insert the
// freshly fetched set inside one transaction. Any failure rolls the
// whole refresh back, leaving the prior data intact. Only rows whose
// extra_data jurisdiction matches are deleted; other jurisdictions are
// never touched.
func (s *LegislationStore) ReplaceJurisdiction(ctx context.Context, jurisdiction string, recs []model.Legislation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM legislation
		WHERE source_type = $1 AND extra_data->>'jurisdiction' = $2`,
		string(model.SourceState), jurisdiction); err != nil {
		return fmt.Errorf("failed to delete %s records: %w", jurisdiction, err)
	}

	now := time.Now()
	for i := range recs {
		rec := &recs[i]
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := insertLegislation(ctx, tx, rec); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit full refresh for %s: %w", jurisdiction, err)
	}
	return nil
}

// BeginBatch opens a write batch backed by one transaction.
func (s *LegislationStore) BeginBatch(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Batch buffers upserts inside one open transaction. The merge engine
// lives here: lookup by ID, insert when absent, field-level merge when
// present, and exactly one status-change action per detected
// transition.
type Batch struct {
	tx *sql.Tx
}

// Upsert reconciles one normalized record against stored state.
func (b *Batch) Upsert(ctx context.Context, rec *model.Legislation) (bool, model.StatusTransition, error) {
	query := fmt.Sprintf(`SELECT %s FROM legislation WHERE id = $1 FOR UPDATE`, legislationColumns)

	now := time.Now()

	existing, err := scanLegislation(b.tx.QueryRowContext(ctx, query, rec.ID))
	if err == sql.ErrNoRows {
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := insertLegislation(ctx, b.tx, rec); err != nil {
			return false, model.StatusTransition{}, fmt.Errorf("failed to insert %s: %w", rec.ID, err)
		}
		return true, model.StatusTransition{}, nil
	}
	if err != nil {
		return false, model.StatusTransition{}, fmt.Errorf("failed to look up %s: %w", rec.ID, err)
	}

	transition := model.Merge(existing, rec, now)

	if _, err := b.tx.ExecContext(ctx, `
		UPDATE legislation
		SET title = $2, summary = $3, status = $4, introduced_date = $5,
		    last_action_date = $6, source_url = $7, extra_data = $8, updated_at = $9
		WHERE id = $1`,
		existing.ID, existing.Title, existing.Summary, string(existing.Status),
		existing.IntroducedDate, existing.LastActionDate, existing.SourceURL,
		existing.ExtraData, existing.UpdatedAt); err != nil {
		return false, transition, fmt.Errorf("failed to update %s: %w", rec.ID, err)
	}

	if transition.Changed {
		if _, err := b.tx.ExecContext(ctx, `
			INSERT INTO legislative_actions (legislation_id, action_date, action_type,
			                                 description, old_status, new_status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			existing.ID, now, model.ActionTypeStatusChange,
			fmt.Sprintf("status changed from %s to %s", transition.Old, transition.New),
			string(transition.Old), string(transition.New)); err != nil {
			return false, transition, fmt.Errorf("failed to record status change for %s: %w", rec.ID, err)
		}
	}

	return false, transition, nil
}

// Commit commits the batch transaction.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Rollback discards the batch transaction.
func (b *Batch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to roll back batch: %w", err)
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx for shared write helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLegislation(ctx context.Context, e execer, rec *model.Legislation) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO legislation (id, source_type, title, summary, status,
		                         introduced_date, last_action_date, source_url,
		                         extra_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, string(rec.SourceType), rec.Title, rec.Summary, string(rec.Status),
		rec.IntroducedDate, rec.LastActionDate, rec.SourceURL, rec.ExtraData,
		rec.CreatedAt, rec.UpdatedAt)
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLegislation(row rowScanner) (*model.Legislation, error) {
	var rec model.Legislation
	var sourceType, status string

	err := row.Scan(
		&rec.ID,
		&sourceType,
		&rec.Title,
		&rec.Summary,
		&status,
		&rec.IntroducedDate,
		&rec.LastActionDate,
		&rec.SourceURL,
		&rec.ExtraData,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.SourceType = model.SourceType(sourceType)
	rec.Status = model.Status(status)
	return &rec, nil
}

func collectLegislation(rows *sql.Rows) ([]model.Legislation, error) {
	var records []model.Legislation
	for rows.Next() {
		rec, err := scanLegislation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legislation: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
