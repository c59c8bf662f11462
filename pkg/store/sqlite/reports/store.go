package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
)

// Store keeps the tracking records of generated reports. Records are written once and never updated.
type Store interface {
	Create(ctx context.Context, r store.GeneratedReport) error
	Get(ctx context.Context, id string) (*store.GeneratedReport, error)
	List(ctx context.Context, filter store.GeneratedReportFilter) ([]store.GeneratedReport, error)
	Delete(ctx context.Context, id string) error
	// ListStoragePaths returns every non-null storage path.
	ListStoragePaths(ctx context.Context) ([]string, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

const selectColumns = `
	SELECT gr.id, gr.user_id, gr.company_id, COALESCE(c.name, ''), gr.month, gr.report_date,
		gr.storage_path, gr.persisted, gr.created_at
	FROM generated_reports gr
	LEFT JOIN companies c ON c.id = gr.company_id`

func (s *reportStore) Create(ctx context.Context, r store.GeneratedReport) error {
	query := `
		INSERT INTO generated_reports (id, user_id, company_id, month, report_date, storage_path, persisted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		r.ID,
		r.UserID,
		r.CompanyID,
		r.Month,
		r.ReportDate,
		r.StoragePath,
		r.Persisted,
		sqlite.FormatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert generated report: %w", err)
	}
	return nil
}

func (s *reportStore) Get(ctx context.Context, id string) (*store.GeneratedReport, error) {
	row := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, selectColumns+` WHERE gr.id = ?`, id)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("generated report %s: %w", id, sqlite.ErrNotFound)
		}
		return nil, err
	}
	return r, nil
}

// List returns matching records, newest first.
func (s *reportStore) List(ctx context.Context, filter store.GeneratedReportFilter) ([]store.GeneratedReport, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != "" {
		conditions = append(conditions, "gr.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, "gr.company_id = ?")
		args = append(args, filter.CompanyID)
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY gr.created_at DESC, gr.id DESC"

	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generated reports: %w", err)
	}
	defer rows.Close()

	result := []store.GeneratedReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generated reports: %w", err)
	}
	return result, nil
}

// Delete removes the tracking record only. The stored object, if any, is left in place.
func (s *reportStore) Delete(ctx context.Context, id string) error {
	res, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM generated_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete generated report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete generated report: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("generated report %s: %w", id, sqlite.ErrNotFound)
	}
	return nil
}

func (s *reportStore) ListStoragePaths(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT storage_path FROM generated_reports WHERE storage_path IS NOT NULL`
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query storage paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning storage path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating storage paths: %w", err)
	}
	return paths, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*store.GeneratedReport, error) {
	var (
		r         store.GeneratedReport
		createdAt string
	)
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.CompanyID,
		&r.CompanyName,
		&r.Month,
		&r.ReportDate,
		&r.StoragePath,
		&r.Persisted,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning generated report: %w", err)
	}
	t, err := sqlite.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = t
	return &r, nil
}
