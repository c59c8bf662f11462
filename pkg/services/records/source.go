// Package records exposes the report source data in domain terms.
package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/work-reports/pkg/adapters"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	recordstore "github.com/de-tools/work-reports/pkg/store/sqlite/records"
)

// Source resolves the inputs of a report. Lookups are scoped to the owning actor.
type Source interface {
	GetActor(ctx context.Context, actorID string) (domain.ActorIdentity, error)
	GetCompany(ctx context.Context, actorID, companyID string) (domain.CompanyProfile, error)
	GetReportConfig(ctx context.Context, actorID, companyID string) (domain.ReportConfig, error)
	ListBillableRecords(ctx context.Context, actorID, companyID string, period domain.Period) ([]domain.BillableRecord, error)
}

type source struct {
	store recordstore.Store
}

func NewSource(store recordstore.Store) Source {
	return &source{store: store}
}

func (s *source) GetActor(ctx context.Context, actorID string) (domain.ActorIdentity, error) {
	p, err := s.store.GetProfile(ctx, actorID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.ActorIdentity{}, fmt.Errorf("%w: actor %s", domain.ErrNotFound, actorID)
		}
		return domain.ActorIdentity{}, fmt.Errorf("get actor: %w", err)
	}
	return adapters.MapStoreProfileToDomain(*p), nil
}

func (s *source) GetCompany(ctx context.Context, actorID, companyID string) (domain.CompanyProfile, error) {
	c, err := s.store.GetCompany(ctx, actorID, companyID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.CompanyProfile{}, fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
		}
		return domain.CompanyProfile{}, fmt.Errorf("get company: %w", err)
	}
	return adapters.MapStoreCompanyToDomain(*c), nil
}

func (s *source) GetReportConfig(ctx context.Context, actorID, companyID string) (domain.ReportConfig, error) {
	c, err := s.store.GetReportConfig(ctx, actorID, companyID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.ReportConfig{}, fmt.Errorf("%w: company %s", domain.ErrNotConfigured, companyID)
		}
		return domain.ReportConfig{}, fmt.Errorf("get report config: %w", err)
	}
	return adapters.MapStoreReportConfigToDomain(*c), nil
}

func (s *source) ListBillableRecords(
	ctx context.Context,
	actorID, companyID string,
	period domain.Period,
) ([]domain.BillableRecord, error) {
	entries, err := s.store.ListBillableEntries(ctx, actorID, companyID, period.FirstDay())
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
		return nil, fmt.Errorf("list work records: %w", err)
	}

	records := make([]domain.BillableRecord, 0, len(entries))
	for _, e := range entries {
		r, err := adapters.MapStoreBillableEntryToDomain(e)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
