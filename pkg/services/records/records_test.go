package records

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	recordstore "github.com/de-tools/work-reports/pkg/store/sqlite/records"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesYAML = `
profiles:
  - id: u1
    display_name: Jane Doe
  - id: admin
    display_name: Office
    role: admin
companies:
  - id: c1
    user_id: u1
    name: Acme
    city: Ljubljana
activities:
  - id: a1
    user_id: u1
    name: Development
    hourly_rate: "50"
  - id: a2
    user_id: u1
    name: Testing
    hourly_rate: "20.5"
templates:
  - id: t1
    name: Default
    definition: '{"content": ["{{companyName}}", "{{activitiesTable}}"]}'
report_configs:
  - user_id: u1
    company_id: c1
    template_id: t1
    location: Ljubljana
work_entries:
  - user_id: u1
    company_id: c1
    activity_id: a2
    month: "2025-02"
    hours: "5"
  - user_id: u1
    company_id: c1
    activity_id: a1
    month: "2025-02-01"
    hours: "10"
`

type fixture struct {
	source   Source
	importer *Importer
}

func setupFixture(t *testing.T) *fixture {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := recordstore.NewStore(db)
	require.NoError(t, err)

	importer := NewImporter(db, s)
	importer.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	return &fixture{source: NewSource(s), importer: importer}
}

func TestImporter_Import(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	summary, err := f.importer.Import(ctx, []byte(fixturesYAML), ".")
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{
		Profiles: 2, Companies: 1, Activities: 2, Templates: 1, ReportConfigs: 1, WorkEntries: 2,
	}, summary)

	actor, err := f.source.GetActor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFreelancer, actor.Role)

	admin, err := f.source.GetActor(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	cfg, err := f.source.GetReportConfig(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ljubljana", cfg.Location)
	assert.Contains(t, string(cfg.Template.Definition), "{{activitiesTable}}")

	records, err := f.source.ListBillableRecords(ctx, "u1", "c1", domain.Period{Year: 2025, Month: time.February})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Testing", records[0].Activity.Name)
	assert.True(t, decimal.RequireFromString("20.5").Equal(records[0].Activity.HourlyRate))
	assert.True(t, decimal.NewFromInt(10).Equal(records[1].Record.Hours))
	assert.True(t, records[0].Record.CreatedAt.Before(records[1].Record.CreatedAt))
}

func TestImporter_Import_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bad yaml", input: "profiles: [unclosed"},
		{name: "bad role", input: "profiles:\n  - id: u1\n    display_name: X\n    role: owner\n"},
		{name: "bad rate", input: "profiles:\n  - id: u1\n    display_name: X\nactivities:\n  - id: a1\n    user_id: u1\n    name: Dev\n    hourly_rate: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)

			_, err := f.importer.Import(context.Background(), []byte(tt.input), ".")
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestImporter_Import_IsAtomic(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	input := "profiles:\n  - id: u1\n    display_name: X\nwork_entries:\n  - user_id: u1\n    company_id: missing\n    activity_id: missing\n    month: \"2025-02\"\n    hours: \"1\"\n"
	_, err := f.importer.Import(ctx, []byte(input), ".")
	require.Error(t, err)

	_, err = f.source.GetActor(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSource_MapsMissingRows(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	_, err := f.importer.Import(ctx, []byte(fixturesYAML), ".")
	require.NoError(t, err)

	_, err = f.source.GetCompany(ctx, "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.source.GetReportConfig(ctx, "admin", "c1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	records, err := f.source.ListBillableRecords(ctx, "u1", "c1", domain.Period{Year: 2025, Month: time.January})
	require.NoError(t, err)
	assert.Empty(t, records)
}
