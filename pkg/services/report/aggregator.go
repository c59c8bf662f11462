// Package report runs the report pipeline: aggregate, merge, render and deliver.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/services/records"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Aggregator interface {
	// BuildReportModel joins the report inputs of actorID for companyID and period and computes
	// the line items and total.
	BuildReportModel(
		ctx context.Context,
		companyID string,
		period domain.Period,
		reportDate time.Time,
		actorID string,
	) (*domain.ReportModel, error)
}

type aggregator struct {
	source records.Source
}

func NewAggregator(source records.Source) Aggregator {
	return &aggregator{source: source}
}

func (a *aggregator) BuildReportModel(
	ctx context.Context,
	companyID string,
	period domain.Period,
	reportDate time.Time,
	actorID string,
) (*domain.ReportModel, error) {
	if companyID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: company and actor are required", domain.ErrInvalidArgument)
	}
	if period.IsZero() {
		return nil, fmt.Errorf("%w: period is required", domain.ErrInvalidArgument)
	}

	var (
		config   domain.ReportConfig
		company  domain.CompanyProfile
		billable []domain.BillableRecord
		actor    domain.ActorIdentity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		config, err = a.source.GetReportConfig(gctx, actorID, companyID)
		return err
	})
	g.Go(func() (err error) {
		company, err = a.source.GetCompany(gctx, actorID, companyID)
		return err
	})
	g.Go(func() (err error) {
		billable, err = a.source.ListBillableRecords(gctx, actorID, companyID, period)
		return err
	})
	g.Go(func() (err error) {
		actor, err = a.source.GetActor(gctx, actorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(billable) == 0 {
		return nil, fmt.Errorf("%w: company %s, %s", domain.ErrNoWorkRecords, companyID, period)
	}

	items, total := lineItems(billable)
	return &domain.ReportModel{
		Config:      config,
		Company:     company,
		Actor:       actor,
		Period:      period,
		ReportDate:  reportDate,
		LineItems:   items,
		TotalAmount: total,
	}, nil
}

// lineItems numbers records by (CreatedAt, ID) and sums their exact totals.
func lineItems(billable []domain.BillableRecord) ([]domain.LineItem, decimal.Decimal) {
	sorted := make([]domain.BillableRecord, len(billable))
	copy(sorted, billable)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Record, sorted[j].Record
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	items := make([]domain.LineItem, 0, len(sorted))
	total := decimal.Zero
	for i, r := range sorted {
		lineTotal := r.Record.Hours.Mul(r.Activity.HourlyRate)
		items = append(items, domain.LineItem{
			Sequence:  i + 1,
			Name:      r.Activity.Name,
			Rate:      r.Activity.HourlyRate,
			Hours:     r.Record.Hours,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total
}
