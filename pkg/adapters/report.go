package adapters

import (
	"fmt"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/models/store"
	"github.com/shopspring/decimal"
)

func MapStoreProfileToDomain(p store.Profile) domain.ActorIdentity {
	return domain.ActorIdentity{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Role:        domain.Role(p.Role),
	}
}

func MapDomainActorToStore(a domain.ActorIdentity) store.Profile {
	role := a.Role
	if role == "" {
		role = domain.RoleFreelancer
	}
	return store.Profile{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Role:        string(role),
	}
}

func MapStoreCompanyToDomain(c store.Company) domain.CompanyProfile {
	return domain.CompanyProfile{
		ID:      c.ID,
		ActorID: c.UserID,
		Name:    c.Name,
		TaxID:   deref(c.TaxNumber),
		City:    deref(c.City),
	}
}

func MapDomainCompanyToStore(c domain.CompanyProfile) store.Company {
	return store.Company{
		ID:        c.ID,
		UserID:    c.ActorID,
		Name:      c.Name,
		TaxNumber: optional(c.TaxID),
		City:      optional(c.City),
	}
}

func MapStoreActivityToDomain(a store.Activity) (domain.ActivityRate, error) {
	rate, err := decimal.NewFromString(a.HourlyRate)
	if err != nil {
		return domain.ActivityRate{}, fmt.Errorf("activity %s: hourly rate %q: %w", a.ID, a.HourlyRate, err)
	}
	return domain.ActivityRate{
		ID:         a.ID,
		ActorID:    a.UserID,
		Name:       a.Name,
		HourlyRate: rate,
	}, nil
}

func MapDomainActivityToStore(a domain.ActivityRate) store.Activity {
	return store.Activity{
		ID:         a.ID,
		UserID:     a.ActorID,
		Name:       a.Name,
		HourlyRate: a.HourlyRate.String(),
	}
}

func MapStoreWorkEntryToDomain(e store.WorkEntry) (domain.WorkRecord, error) {
	period, err := domain.ParsePeriod(e.Month)
	if err != nil {
		return domain.WorkRecord{}, fmt.Errorf("work entry %s: %w", e.ID, err)
	}
	hours, err := decimal.NewFromString(e.Hours)
	if err != nil {
		return domain.WorkRecord{}, fmt.Errorf("work entry %s: hours %q: %w", e.ID, e.Hours, err)
	}
	return domain.WorkRecord{
		ID:         e.ID,
		ActorID:    e.UserID,
		CompanyID:  e.CompanyID,
		ActivityID: e.ActivityID,
		Period:     period,
		Hours:      hours,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func MapDomainWorkRecordToStore(r domain.WorkRecord) store.WorkEntry {
	return store.WorkEntry{
		ID:         r.ID,
		UserID:     r.ActorID,
		CompanyID:  r.CompanyID,
		ActivityID: r.ActivityID,
		Month:      r.Period.FirstDay(),
		Hours:      r.Hours.String(),
		CreatedAt:  r.CreatedAt,
	}
}

func MapStoreBillableEntryToDomain(e store.BillableEntry) (domain.BillableRecord, error) {
	record, err := MapStoreWorkEntryToDomain(e.WorkEntry)
	if err != nil {
		return domain.BillableRecord{}, err
	}
	activity, err := MapStoreActivityToDomain(store.Activity{
		ID:         e.ActivityID,
		UserID:     e.UserID,
		Name:       e.ActivityName,
		HourlyRate: e.HourlyRate,
	})
	if err != nil {
		return domain.BillableRecord{}, err
	}
	return domain.BillableRecord{Record: record, Activity: activity}, nil
}

func MapStoreTemplateToDomain(t store.ReportTemplate) domain.ReportTemplate {
	out := domain.ReportTemplate{
		ID:         t.ID,
		Name:       t.Name,
		Definition: []byte(t.Definition),
	}
	if t.Styles != nil {
		out.Styles = []byte(*t.Styles)
	}
	return out
}

func MapDomainTemplateToStore(t domain.ReportTemplate) store.ReportTemplate {
	return store.ReportTemplate{
		ID:         t.ID,
		Name:       t.Name,
		Definition: string(t.Definition),
		Styles:     optional(string(t.Styles)),
	}
}

func MapStoreReportConfigToDomain(c store.ReportConfig) domain.ReportConfig {
	return domain.ReportConfig{
		ID:         c.ID,
		ActorID:    c.UserID,
		CompanyID:  c.CompanyID,
		TemplateID: c.TemplateID,
		Location:   deref(c.Location),
		IntroText:  deref(c.IntroText),
		OutroText:  deref(c.OutroText),
		Template:   MapStoreTemplateToDomain(c.Template),
	}
}

func MapDomainReportConfigToStore(c domain.ReportConfig) store.ReportConfig {
	return store.ReportConfig{
		ID:         c.ID,
		UserID:     c.ActorID,
		CompanyID:  c.CompanyID,
		TemplateID: c.TemplateID,
		Location:   optional(c.Location),
		IntroText:  optional(c.IntroText),
		OutroText:  optional(c.OutroText),
	}
}

func MapStoreGeneratedReportToDomain(r store.GeneratedReport) (domain.GeneratedArtifactRecord, error) {
	period, err := domain.ParsePeriod(r.Month)
	if err != nil {
		return domain.GeneratedArtifactRecord{}, fmt.Errorf("generated report %s: %w", r.ID, err)
	}
	reportDate, err := domain.ParseReportDate(r.ReportDate)
	if err != nil {
		return domain.GeneratedArtifactRecord{}, fmt.Errorf("generated report %s: %w", r.ID, err)
	}
	return domain.GeneratedArtifactRecord{
		ID:          r.ID,
		ActorID:     r.UserID,
		CompanyID:   r.CompanyID,
		CompanyName: r.CompanyName,
		Period:      period,
		ReportDate:  reportDate,
		StoragePath: r.StoragePath,
		Persisted:   r.Persisted,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func MapDomainGeneratedReportToStore(r domain.GeneratedArtifactRecord) store.GeneratedReport {
	return store.GeneratedReport{
		ID:          r.ID,
		UserID:      r.ActorID,
		CompanyID:   r.CompanyID,
		Month:       r.Period.FirstDay(),
		ReportDate:  r.ReportDate.Format(domain.DateLayout),
		StoragePath: r.StoragePath,
		Persisted:   r.Persisted,
		CreatedAt:   r.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
