package data

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	runHistoryLimitDefault = 20
	categorySeparator      = ","

	insertRunSQL = `INSERT INTO run (category, threshold, created_at, original_count, removed_count, final_count, mislabel_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`

	insertRemovalSQL = `INSERT INTO removal (run_id, idx, record_id, title, categories, topic, keyword_count, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunsSQL = `SELECT id, category, threshold, created_at, original_count, removed_count, final_count, mislabel_rate
		FROM run
		WHERE category = COALESCE(?, category)
		ORDER BY id DESC
		LIMIT ?`

	selectRemovalsSQL = `SELECT idx, record_id, title, categories, topic, keyword_count, reason
		FROM removal
		WHERE run_id = ?
		ORDER BY idx`
)

// AuditRun is one recorded cleaning run.
type AuditRun struct {
	ID            int64          `json:"id" yaml:"id"`
	Category      string         `json:"category" yaml:"category"`
	Threshold     int            `json:"threshold" yaml:"threshold"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	OriginalCount int            `json:"original_count" yaml:"original_count"`
	RemovedCount  int            `json:"removed_count" yaml:"removed_count"`
	FinalCount    int            `json:"final_count" yaml:"final_count"`
	MislabelRate  string         `json:"mislabel_rate" yaml:"mislabel_rate"`
	Removals      []AuditRemoval `json:"removals,omitempty" yaml:"removals,omitempty"`
}

// AuditRemoval is one removed label within a run.
type AuditRemoval struct {
	Index        int      `json:"idx" yaml:"idx"`
	RecordID     string   `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Title        string   `json:"title" yaml:"title"`
	Categories   []string `json:"categories" yaml:"categories"`
	Topic        string   `json:"topic" yaml:"topic"`
	KeywordCount int      `json:"keyword_count" yaml:"keyword_count"`
	Reason       string   `json:"reason" yaml:"reason"`
}

// SaveRun persists the run and its removals in a single transaction and
// returns the new run ID.
func (a *AuditDB) SaveRun(run *AuditRun) (int64, error) {
	if a == nil || a.db == nil {
		return 0, errDBNotInitialized
	}
	if run == nil {
		return 0, errors.New("run required")
	}
	if run.Category == "" {
		return 0, errors.New("run category required")
	}

	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := a.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	var id int64
	err = tx.QueryRow(a.rebind(insertRunSQL),
		run.Category, run.Threshold, created.UTC().Format(time.RFC3339),
		run.OriginalCount, run.RemovedCount, run.FinalCount, run.MislabelRate,
	).Scan(&id)
	if err != nil {
		return 0, rollback(tx, errors.Wrap(err, "failed to insert run"))
	}

	stmt, err := tx.Prepare(a.rebind(insertRemovalSQL))
	if err != nil {
		return 0, rollback(tx, errors.Wrap(err, "failed to prepare removal insert statement"))
	}
	defer stmt.Close()

	for _, r := range run.Removals {
		_, err = stmt.Exec(id, r.Index, r.RecordID, r.Title,
			strings.Join(r.Categories, categorySeparator), r.Topic, r.KeywordCount, r.Reason)
		if err != nil {
			return 0, rollback(tx, errors.Wrapf(err, "failed to insert removal %d", r.Index))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	run.ID = id
	return id, nil
}

func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return errors.Wrapf(rbErr, "failed to rollback transaction after: %v", err)
	}
	return err
}

// ListRuns returns the most recent runs, newest first. An empty category
// matches all runs.
func (a *AuditDB) ListRuns(category string, limit int) ([]*AuditRun, error) {
	if a == nil || a.db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = runHistoryLimitDefault
	}

	var cat sql.NullString
	if category != "" {
		cat = sql.NullString{String: category, Valid: true}
	}

	rows, err := a.db.Query(a.rebind(selectRunsSQL), cat, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	list := make([]*AuditRun, 0)
	for rows.Next() {
		r := &AuditRun{}
		var created string
		if err := rows.Scan(&r.ID, &r.Category, &r.Threshold, &created,
			&r.OriginalCount, &r.RemovedCount, &r.FinalCount, &r.MislabelRate); err != nil {
			return nil, errors.Wrap(err, "failed to scan run row")
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, errors.Wrapf(err, "failed to parse run date: %s", created)
		}
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate runs")
	}

	return list, nil
}

// GetRemovals returns the removals recorded for a run in record index order.
func (a *AuditDB) GetRemovals(runID int64) ([]AuditRemoval, error) {
	if a == nil || a.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := a.db.Query(a.rebind(selectRemovalsSQL), runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query removals for run %d", runID)
	}
	defer rows.Close()

	list := make([]AuditRemoval, 0)
	for rows.Next() {
		var (
			r          AuditRemoval
			recordID   sql.NullString
			title      sql.NullString
			categories sql.NullString
		)
		if err := rows.Scan(&r.Index, &recordID, &title, &categories, &r.Topic, &r.KeywordCount, &r.Reason); err != nil {
			return nil, errors.Wrap(err, "failed to scan removal row")
		}
		r.RecordID = recordID.String
		r.Title = title.String
		r.Categories = splitCategories(categories.String)
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate removals")
	}

	return list, nil
}

func splitCategories(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, categorySeparator)
}
