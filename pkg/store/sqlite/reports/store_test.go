package reports

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO profiles (id, display_name, role, created_at) VALUES ('u1', 'Jane', 'freelancer', '2025-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO companies (id, user_id, name) VALUES ('c1', 'u1', 'Acme'), ('c2', 'u1', 'Globex')`)
	require.NoError(t, err)

	return &fixture{db: db, store: s}
}

func ptr(s string) *string {
	return &s
}

func TestStore_CreateAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	err := f.store.Create(ctx, store.GeneratedReport{
		ID:          "r1",
		UserID:      "u1",
		CompanyID:   "c1",
		Month:       "2025-02-01",
		ReportDate:  "2025-03-01",
		StoragePath: ptr("u1/c1/2025-02.pdf"),
		Persisted:   true,
		CreatedAt:   created,
	})
	require.NoError(t, err)

	r, err := f.store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", r.CompanyName)
	assert.Equal(t, "2025-02-01", r.Month)
	assert.True(t, r.Persisted)
	require.NotNil(t, r.StoragePath)
	assert.Equal(t, "u1/c1/2025-02.pdf", *r.StoragePath)
	assert.True(t, r.CreatedAt.Equal(created))

	_, err = f.store.Get(ctx, "missing")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range []store.GeneratedReport{
		{ID: "r1", UserID: "u1", CompanyID: "c1", Month: "2025-01-01", ReportDate: "2025-02-01"},
		{ID: "r2", UserID: "u1", CompanyID: "c2", Month: "2025-01-01", ReportDate: "2025-02-01"},
		{ID: "r3", UserID: "u1", CompanyID: "c1", Month: "2025-02-01", ReportDate: "2025-03-01"},
		{ID: "r4", UserID: "u2", CompanyID: "c9", Month: "2025-02-01", ReportDate: "2025-03-01"},
	} {
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.store.Create(ctx, r))
	}

	tests := []struct {
		name     string
		filter   store.GeneratedReportFilter
		expected []string
	}{
		{name: "by user newest first", filter: store.GeneratedReportFilter{UserID: "u1"}, expected: []string{"r3", "r2", "r1"}},
		{name: "by user and company", filter: store.GeneratedReportFilter{UserID: "u1", CompanyID: "c1"}, expected: []string{"r3", "r1"}},
		{name: "unknown user", filter: store.GeneratedReportFilter{UserID: "nobody"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports, err := f.store.List(ctx, tt.filter)
			require.NoError(t, err)

			ids := []string{}
			for _, r := range reports {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, store.GeneratedReport{
		ID: "r1", UserID: "u1", CompanyID: "c1", Month: "2025-01-01", ReportDate: "2025-02-01", CreatedAt: time.Now(),
	}))

	require.NoError(t, f.store.Delete(ctx, "r1"))
	assert.ErrorIs(t, f.store.Delete(ctx, "r1"), sqlite.ErrNotFound)
}

func TestStore_ListStoragePaths(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, store.GeneratedReport{
		ID: "r1", UserID: "u1", CompanyID: "c1", Month: "2025-01-01", ReportDate: "2025-02-01",
		StoragePath: ptr("u1/c1/2025-01.pdf"), Persisted: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, f.store.Create(ctx, store.GeneratedReport{
		ID: "r2", UserID: "u1", CompanyID: "c1", Month: "2025-01-01", ReportDate: "2025-02-02",
		StoragePath: ptr("u1/c1/2025-01.pdf"), Persisted: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, f.store.Create(ctx, store.GeneratedReport{
		ID: "r3", UserID: "u1", CompanyID: "c2", Month: "2025-01-01", ReportDate: "2025-02-01", CreatedAt: time.Now(),
	}))

	paths, err := f.store.ListStoragePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1/c1/2025-01.pdf"}, paths)
}

func TestStore_Create_ShouldWrapDriverErrors(t *testing.T) {
	// Given: a database whose insert fails
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generated_reports")).
		WillReturnError(errors.New("disk I/O error"))

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	err = s.Create(context.Background(), store.GeneratedReport{
		ID: "r1", UserID: "u1", CompanyID: "c1", Month: "2025-01-01", ReportDate: "2025-02-01", CreatedAt: time.Now(),
	})

	// Then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert generated report")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List_ShouldScanRows(t *testing.T) {
	// Given: a mocked result set
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "company_id", "name", "month", "report_date", "storage_path", "persisted", "created_at",
	}).AddRow("r1", "u1", "c1", "Acme", "2025-01-01", "2025-02-01", nil, false, "2025-02-01T08:00:00.000000000Z")

	mock.ExpectQuery(regexp.QuoteMeta("FROM generated_reports gr")).
		WithArgs("u1").
		WillReturnRows(rows)

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	reports, err := s.List(context.Background(), store.GeneratedReportFilter{UserID: "u1"})

	// Then
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0].StoragePath)
	assert.False(t, reports[0].Persisted)
	assert.Equal(t, "Acme", reports[0].CompanyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
