package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/work-reports/pkg/adapters"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	recordstore "github.com/de-tools/work-reports/pkg/store/sqlite/records"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixtures is the seed file layout loaded by Importer.
type Fixtures struct {
	Profiles []struct {
		ID          string `yaml:"id"`
		DisplayName string `yaml:"display_name"`
		Role        string `yaml:"role"`
	} `yaml:"profiles"`
	Companies []struct {
		ID        string `yaml:"id"`
		UserID    string `yaml:"user_id"`
		Name      string `yaml:"name"`
		TaxNumber string `yaml:"tax_number"`
		City      string `yaml:"city"`
	} `yaml:"companies"`
	Activities []struct {
		ID         string `yaml:"id"`
		UserID     string `yaml:"user_id"`
		Name       string `yaml:"name"`
		HourlyRate string `yaml:"hourly_rate"`
	} `yaml:"activities"`
	Templates []struct {
		ID             string `yaml:"id"`
		Name           string `yaml:"name"`
		Definition     string `yaml:"definition"`
		DefinitionFile string `yaml:"definition_file"`
		Styles         string `yaml:"styles"`
	} `yaml:"templates"`
	ReportConfigs []struct {
		ID         string `yaml:"id"`
		UserID     string `yaml:"user_id"`
		CompanyID  string `yaml:"company_id"`
		TemplateID string `yaml:"template_id"`
		Location   string `yaml:"location"`
		IntroText  string `yaml:"intro_text"`
		OutroText  string `yaml:"outro_text"`
	} `yaml:"report_configs"`
	WorkEntries []struct {
		ID         string `yaml:"id"`
		UserID     string `yaml:"user_id"`
		CompanyID  string `yaml:"company_id"`
		ActivityID string `yaml:"activity_id"`
		Month      string `yaml:"month"`
		Hours      string `yaml:"hours"`
	} `yaml:"work_entries"`
}

type ImportSummary struct {
	Profiles      int
	Companies     int
	Activities    int
	Templates     int
	ReportConfigs int
	WorkEntries   int
}

type Importer struct {
	db    *sql.DB
	store recordstore.Store
	now   func() time.Time
}

func NewImporter(db *sql.DB, store recordstore.Store) *Importer {
	return &Importer{db: db, store: store, now: time.Now}
}

// ImportFile loads a fixtures file. Relative definition_file paths resolve against its directory.
func (i *Importer) ImportFile(ctx context.Context, path string) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading fixtures: %w", err)
	}
	return i.Import(ctx, data, filepath.Dir(path))
}

// Import writes all fixtures in a single transaction. Work entries get increasing creation
// times in file order so reports list them in the order they were written.
func (i *Importer) Import(ctx context.Context, data []byte, baseDir string) (ImportSummary, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ImportSummary{}, fmt.Errorf("%w: fixtures: %v", domain.ErrInvalidArgument, err)
	}

	logger := zerolog.Ctx(ctx)
	now := i.now().UTC()
	var summary ImportSummary

	err := sqlite.WithinTx(ctx, i.db, func(ctx context.Context) error {
		for _, p := range f.Profiles {
			role := domain.Role(p.Role)
			if role != "" && role != domain.RoleFreelancer && role != domain.RoleAdmin {
				return fmt.Errorf("%w: profile %s: unknown role %q", domain.ErrInvalidArgument, p.ID, p.Role)
			}
			row := adapters.MapDomainActorToStore(domain.ActorIdentity{ID: p.ID, DisplayName: p.DisplayName, Role: role})
			row.CreatedAt = now
			if err := i.store.UpsertProfile(ctx, row); err != nil {
				return err
			}
			summary.Profiles++
		}

		for _, c := range f.Companies {
			if err := i.store.UpsertCompany(ctx, adapters.MapDomainCompanyToStore(domain.CompanyProfile{
				ID: c.ID, ActorID: c.UserID, Name: c.Name, TaxID: c.TaxNumber, City: c.City,
			})); err != nil {
				return err
			}
			summary.Companies++
		}

		for _, a := range f.Activities {
			rate, err := decimal.NewFromString(a.HourlyRate)
			if err != nil {
				return fmt.Errorf("%w: activity %s: hourly rate %q", domain.ErrInvalidArgument, a.ID, a.HourlyRate)
			}
			if err := i.store.UpsertActivity(ctx, adapters.MapDomainActivityToStore(domain.ActivityRate{
				ID: a.ID, ActorID: a.UserID, Name: a.Name, HourlyRate: rate,
			})); err != nil {
				return err
			}
			summary.Activities++
		}

		for _, t := range f.Templates {
			definition := []byte(t.Definition)
			if t.DefinitionFile != "" {
				p := t.DefinitionFile
				if !filepath.IsAbs(p) {
					p = filepath.Join(baseDir, p)
				}
				raw, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("template %s: %w", t.ID, err)
				}
				definition = raw
			}
			if len(definition) == 0 {
				return fmt.Errorf("%w: template %s has no definition", domain.ErrInvalidArgument, t.ID)
			}
			if err := i.store.UpsertTemplate(ctx, adapters.MapDomainTemplateToStore(domain.ReportTemplate{
				ID: t.ID, Name: t.Name, Definition: definition, Styles: []byte(t.Styles),
			})); err != nil {
				return err
			}
			summary.Templates++
		}

		for _, c := range f.ReportConfigs {
			id := c.ID
			if id == "" {
				id = uuid.NewString()
			}
			if err := i.store.UpsertReportConfig(ctx, adapters.MapDomainReportConfigToStore(domain.ReportConfig{
				ID: id, ActorID: c.UserID, CompanyID: c.CompanyID, TemplateID: c.TemplateID,
				Location: c.Location, IntroText: c.IntroText, OutroText: c.OutroText,
			})); err != nil {
				return err
			}
			summary.ReportConfigs++
		}

		entries := make([]domain.WorkRecord, 0, len(f.WorkEntries))
		for n, w := range f.WorkEntries {
			period, err := domain.ParsePeriod(w.Month)
			if err != nil {
				return fmt.Errorf("work entry %d: %w", n, err)
			}
			hours, err := decimal.NewFromString(w.Hours)
			if err != nil {
				return fmt.Errorf("%w: work entry %d: hours %q", domain.ErrInvalidArgument, n, w.Hours)
			}
			id := w.ID
			if id == "" {
				id = uuid.NewString()
			}
			entries = append(entries, domain.WorkRecord{
				ID:         id,
				ActorID:    w.UserID,
				CompanyID:  w.CompanyID,
				ActivityID: w.ActivityID,
				Period:     period,
				Hours:      hours,
				CreatedAt:  now.Add(time.Duration(n) * time.Millisecond),
			})
		}
		rows := make([]store.WorkEntry, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, adapters.MapDomainWorkRecordToStore(e))
		}
		if err := i.store.AddWorkEntries(ctx, rows); err != nil {
			return err
		}
		summary.WorkEntries = len(rows)
		return nil
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("import fixtures: %w", err)
	}

	logger.Info().
		Int("profiles", summary.Profiles).
		Int("companies", summary.Companies).
		Int("activities", summary.Activities).
		Int("templates", summary.Templates).
		Int("report_configs", summary.ReportConfigs).
		Int("work_entries", summary.WorkEntries).
		Msg("fixtures imported")
	return summary, nil
}
