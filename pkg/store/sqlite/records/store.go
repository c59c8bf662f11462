package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
)

// Store reads and seeds the source data a report is built from: profiles, companies,
// activities, work entries, templates and report configurations.
type Store interface {
	GetProfile(ctx context.Context, id string) (*store.Profile, error)
	GetCompany(ctx context.Context, userID, companyID string) (*store.Company, error)
	GetReportConfig(ctx context.Context, userID, companyID string) (*store.ReportConfig, error)
	ListBillableEntries(ctx context.Context, userID, companyID, month string) ([]store.BillableEntry, error)

	UpsertProfile(ctx context.Context, p store.Profile) error
	UpsertCompany(ctx context.Context, c store.Company) error
	UpsertActivity(ctx context.Context, a store.Activity) error
	UpsertTemplate(ctx context.Context, t store.ReportTemplate) error
	UpsertReportConfig(ctx context.Context, c store.ReportConfig) error
	AddWorkEntries(ctx context.Context, entries []store.WorkEntry) error
}

type recordStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &recordStore{db: db}, nil
}

func (s *recordStore) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	query := `SELECT id, display_name, role, created_at FROM profiles WHERE id = ?`

	var (
		p         store.Profile
		createdAt string
	)
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.DisplayName, &p.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, sqlite.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	if p.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *recordStore) GetCompany(ctx context.Context, userID, companyID string) (*store.Company, error) {
	query := `SELECT id, user_id, name, tax_number, city FROM companies WHERE id = ? AND user_id = ?`

	var c store.Company
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, query, companyID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.TaxNumber, &c.City)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", companyID, sqlite.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning company: %w", err)
	}
	return &c, nil
}

func (s *recordStore) GetReportConfig(ctx context.Context, userID, companyID string) (*store.ReportConfig, error) {
	query := `
		SELECT rc.id, rc.user_id, rc.company_id, rc.template_id,
			rc.location, rc.intro_text, rc.outro_text,
			t.id, t.name, t.definition, t.styles
		FROM report_configs rc
		JOIN report_templates t ON t.id = rc.template_id
		WHERE rc.user_id = ? AND rc.company_id = ?`

	var c store.ReportConfig
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, query, userID, companyID).Scan(
		&c.ID, &c.UserID, &c.CompanyID, &c.TemplateID,
		&c.Location, &c.IntroText, &c.OutroText,
		&c.Template.ID, &c.Template.Name, &c.Template.Definition, &c.Template.Styles,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report config for company %s: %w", companyID, sqlite.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning report config: %w", err)
	}
	return &c, nil
}

// ListBillableEntries returns the month's work entries joined with their activity, oldest first.
// An entry whose activity is missing fails the whole call with ErrNotFound.
func (s *recordStore) ListBillableEntries(
	ctx context.Context,
	userID, companyID, month string,
) ([]store.BillableEntry, error) {
	query := `
		SELECT we.id, we.user_id, we.company_id, we.activity_id, we.month, we.hours, we.created_at,
			a.name, a.hourly_rate
		FROM work_entries we
		LEFT JOIN activities a ON a.id = we.activity_id
		WHERE we.user_id = ? AND we.company_id = ? AND we.month = ?
		ORDER BY we.created_at ASC, we.id ASC`

	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, query, userID, companyID, month)
	if err != nil {
		return nil, fmt.Errorf("query work entries: %w", err)
	}
	defer rows.Close()

	var entries []store.BillableEntry
	for rows.Next() {
		var (
			e         store.BillableEntry
			createdAt string
			name      sql.NullString
			rate      sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CompanyID, &e.ActivityID, &e.Month, &e.Hours, &createdAt,
			&name, &rate,
		); err != nil {
			return nil, fmt.Errorf("scanning work entry: %w", err)
		}
		if !name.Valid || !rate.Valid {
			return nil, fmt.Errorf("activity %s of work entry %s: %w", e.ActivityID, e.ID, sqlite.ErrNotFound)
		}
		if e.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, err
		}
		e.ActivityName = name.String
		e.HourlyRate = rate.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work entries: %w", err)
	}
	return entries, nil
}

func (s *recordStore) UpsertProfile(ctx context.Context, p store.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name, role = excluded.role`
	if _, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		p.ID, p.DisplayName, p.Role, sqlite.FormatTime(p.CreatedAt),
	); err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *recordStore) UpsertCompany(ctx context.Context, c store.Company) error {
	query := `
		INSERT INTO companies (id, user_id, name, tax_number, city) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id, name = excluded.name,
			tax_number = excluded.tax_number, city = excluded.city`
	if _, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.TaxNumber, c.City,
	); err != nil {
		return fmt.Errorf("upserting company %s: %w", c.ID, err)
	}
	return nil
}

func (s *recordStore) UpsertActivity(ctx context.Context, a store.Activity) error {
	query := `
		INSERT INTO activities (id, user_id, name, hourly_rate) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id, name = excluded.name, hourly_rate = excluded.hourly_rate`
	if _, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		a.ID, a.UserID, a.Name, a.HourlyRate,
	); err != nil {
		return fmt.Errorf("upserting activity %s: %w", a.ID, err)
	}
	return nil
}

func (s *recordStore) UpsertTemplate(ctx context.Context, t store.ReportTemplate) error {
	query := `
		INSERT INTO report_templates (id, name, definition, styles) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, definition = excluded.definition, styles = excluded.styles`
	if _, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		t.ID, t.Name, t.Definition, t.Styles,
	); err != nil {
		return fmt.Errorf("upserting template %s: %w", t.ID, err)
	}
	return nil
}

func (s *recordStore) UpsertReportConfig(ctx context.Context, c store.ReportConfig) error {
	query := `
		INSERT INTO report_configs (id, user_id, company_id, template_id, location, intro_text, outro_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, company_id) DO UPDATE SET
			template_id = excluded.template_id, location = excluded.location,
			intro_text = excluded.intro_text, outro_text = excluded.outro_text`
	if _, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		c.ID, c.UserID, c.CompanyID, c.TemplateID, c.Location, c.IntroText, c.OutroText,
	); err != nil {
		return fmt.Errorf("upserting report config %s: %w", c.ID, err)
	}
	return nil
}

func (s *recordStore) AddWorkEntries(ctx context.Context, entries []store.WorkEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO work_entries (id, user_id, company_id, activity_id, month, hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	var (
		stmt *sql.Stmt
		err  error
	)
	if tx := sqlite.GetTransaction(ctx); tx != nil {
		stmt, err = tx.PrepareContext(ctx, query)
	} else {
		stmt, err = s.db.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.UserID, e.CompanyID, e.ActivityID, e.Month, e.Hours, sqlite.FormatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert work entry %s: %w", e.ID, err)
		}
	}
	return nil
}
