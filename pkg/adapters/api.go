package adapters

import (
	"github.com/de-tools/work-reports/pkg/models/api"
	"github.com/de-tools/work-reports/pkg/models/domain"
)

func MapDomainGeneratedReportToAPI(r domain.GeneratedArtifactRecord) api.GeneratedReport {
	return api.GeneratedReport{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		CompanyName: r.CompanyName,
		Period:      r.Period.String(),
		ReportDate:  r.ReportDate.Format(domain.DateLayout),
		StoragePath: r.StoragePath,
		Persisted:   r.Persisted,
		CreatedAt:   r.CreatedAt,
	}
}

func MapDomainGeneratedReportsToAPI(records []domain.GeneratedArtifactRecord) []api.GeneratedReport {
	out := make([]api.GeneratedReport, 0, len(records))
	for _, r := range records {
		out = append(out, MapDomainGeneratedReportToAPI(r))
	}
	return out
}

func MapDomainErrorToAPI(err error) api.Error {
	return api.Error{
		Kind:    domain.ErrorKind(err),
		Message: err.Error(),
	}
}
