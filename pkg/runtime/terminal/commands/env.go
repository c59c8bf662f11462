package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/work-reports/pkg/app"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Env is filled in by the root command before a subcommand runs.
type Env struct {
	App      *app.App
	Reporter *export.Reporter
	Fs       afero.Fs
	Now      func() time.Time
}

// reportFlags are the flags shared by generate and preview.
type reportFlags struct {
	company    string
	period     string
	reportDate string
	onBehalfOf string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.company, "company", "", "Company to report on")
	cmd.Flags().StringVar(&f.period, "period", "", "Reporting month, YYYY-MM")
	cmd.Flags().StringVar(&f.reportDate, "date", "", "Report date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.onBehalfOf, "on-behalf-of", "", "Actor to report for (admins only)")

	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("period")
}

func (f *reportFlags) request(now time.Time) (report.GenerateRequest, error) {
	period, err := domain.ParsePeriod(f.period)
	if err != nil {
		return report.GenerateRequest{}, err
	}
	reportDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if f.reportDate != "" {
		if reportDate, err = domain.ParseReportDate(f.reportDate); err != nil {
			return report.GenerateRequest{}, err
		}
	}
	if f.company == "" {
		return report.GenerateRequest{}, fmt.Errorf("%w: company is required", domain.ErrInvalidArgument)
	}
	return report.GenerateRequest{
		CompanyID:  f.company,
		Period:     period,
		ReportDate: reportDate,
		OnBehalfOf: f.onBehalfOf,
	}, nil
}
