package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/work-reports/pkg/adapters"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	"github.com/de-tools/work-reports/pkg/store/sqlite/reports"
)

// ArtifactRecords tracks generated reports in domain terms.
type ArtifactRecords interface {
	Create(ctx context.Context, record domain.GeneratedArtifactRecord) error
	Get(ctx context.Context, id string) (domain.GeneratedArtifactRecord, error)
	// List returns records of actorID, optionally narrowed to companyID, newest first.
	List(ctx context.Context, actorID, companyID string) ([]domain.GeneratedArtifactRecord, error)
	Delete(ctx context.Context, id string) error
	StoragePaths(ctx context.Context) ([]string, error)
}

type artifactRecords struct {
	store reports.Store
}

func NewArtifactRecords(store reports.Store) ArtifactRecords {
	return &artifactRecords{store: store}
}

func (a *artifactRecords) Create(ctx context.Context, record domain.GeneratedArtifactRecord) error {
	return a.store.Create(ctx, adapters.MapDomainGeneratedReportToStore(record))
}

func (a *artifactRecords) Get(ctx context.Context, id string) (domain.GeneratedArtifactRecord, error) {
	r, err := a.store.Get(ctx, id)
	if err != nil {
		return domain.GeneratedArtifactRecord{}, notFound(err, id)
	}
	return adapters.MapStoreGeneratedReportToDomain(*r)
}

func (a *artifactRecords) List(ctx context.Context, actorID, companyID string) ([]domain.GeneratedArtifactRecord, error) {
	rows, err := a.store.List(ctx, store.GeneratedReportFilter{UserID: actorID, CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	out := make([]domain.GeneratedArtifactRecord, 0, len(rows))
	for _, r := range rows {
		record, err := adapters.MapStoreGeneratedReportToDomain(r)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (a *artifactRecords) Delete(ctx context.Context, id string) error {
	return notFound(a.store.Delete(ctx, id), id)
}

func (a *artifactRecords) StoragePaths(ctx context.Context) ([]string, error) {
	return a.store.ListStoragePaths(ctx)
}

func notFound(err error, id string) error {
	if errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("%w: generated report %s", domain.ErrNotFound, id)
	}
	return err
}
