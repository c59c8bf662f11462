package report

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/work-reports/pkg/document"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/observability"
	"github.com/de-tools/work-reports/pkg/services/identity"
	"github.com/rs/zerolog"
)

type Renderer interface {
	Render(ctx context.Context, doc document.Node, styleOverrides *document.Map) ([]byte, error)
}

type GenerateRequest struct {
	CompanyID  string
	Period     domain.Period
	ReportDate time.Time
	// OnBehalfOf names the actor to report for when it is not the caller. Admins only.
	OnBehalfOf string
	Persist    bool
	Sink       Sink
}

type GenerateResult struct {
	Model    *domain.ReportModel
	Artifact []byte
	Delivery *DeliveryResult
}

// Preview is a report merged but not rendered.
type Preview struct {
	Model    *domain.ReportModel
	Document document.Node
	Styles   *document.Map
}

type Service interface {
	GenerateReport(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Preview(ctx context.Context, req GenerateRequest) (*Preview, error)
}

type service struct {
	authz      identity.Authorizer
	aggregator Aggregator
	merger     Merger
	renderer   Renderer
	delivery   Orchestrator
	metrics    *observability.Metrics
}

func NewService(
	authz identity.Authorizer,
	aggregator Aggregator,
	merger Merger,
	renderer Renderer,
	delivery Orchestrator,
	metrics *observability.Metrics,
) Service {
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &service{
		authz:      authz,
		aggregator: aggregator,
		merger:     merger,
		renderer:   renderer,
		delivery:   delivery,
		metrics:    metrics,
	}
}

func (s *service) GenerateReport(ctx context.Context, req GenerateRequest) (result *GenerateResult, err error) {
	mode := "ephemeral"
	if req.Persist {
		mode = "persist"
	}
	defer func() {
		s.metrics.ReportsGenerated.WithLabelValues(domain.ErrorKind(err), mode).Inc()
	}()

	preview, actorID, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().
		Str("actor_id", actorID).
		Str("company_id", req.CompanyID).
		Str("period", req.Period.String()).
		Logger()

	start := time.Now()
	artifact, err := s.renderer.Render(ctx, preview.Document, preview.Styles)
	s.metrics.ObserveStage(observability.StageRender, start)
	if err != nil {
		logger.Error().Err(err).Msg("render failed")
		return nil, err
	}
	s.metrics.ArtifactBytes.Observe(float64(len(artifact)))

	start = time.Now()
	delivery, err := s.delivery.Deliver(ctx, artifact, DeliveryRequest{
		ActorID:    actorID,
		CompanyID:  req.CompanyID,
		Period:     req.Period,
		ReportDate: req.ReportDate,
		Persist:    req.Persist,
		Sink:       req.Sink,
	})
	s.metrics.ObserveStage(observability.StageDeliver, start)
	if err != nil {
		logger.Error().Err(err).Msg("delivery failed")
		return nil, err
	}

	logger.Info().
		Int("line_items", len(preview.Model.LineItems)).
		Int("bytes", len(artifact)).
		Bool("persisted", delivery.Record != nil).
		Msg("report generated")

	return &GenerateResult{Model: preview.Model, Artifact: artifact, Delivery: delivery}, nil
}

func (s *service) Preview(ctx context.Context, req GenerateRequest) (*Preview, error) {
	preview, _, err := s.prepare(ctx, req)
	return preview, err
}

// prepare authorizes the request, aggregates its model and merges the template.
func (s *service) prepare(ctx context.Context, req GenerateRequest) (*Preview, string, error) {
	if req.ReportDate.IsZero() {
		return nil, "", fmt.Errorf("%w: report date is required", domain.ErrInvalidArgument)
	}
	actorID, err := s.authz.EffectiveActor(ctx, req.OnBehalfOf)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	model, err := s.aggregator.BuildReportModel(ctx, req.CompanyID, req.Period, req.ReportDate, actorID)
	s.metrics.ObserveStage(observability.StageAggregate, start)
	if err != nil {
		return nil, "", err
	}

	start = time.Now()
	defer s.metrics.ObserveStage(observability.StageMerge, start)

	template, err := document.Parse(model.Config.Template.Definition)
	if err != nil {
		return nil, "", fmt.Errorf("template %s: %w", model.Config.TemplateID, err)
	}
	var styles *document.Map
	if len(model.Config.Template.Styles) > 0 {
		if styles, err = document.ParseMap(model.Config.Template.Styles); err != nil {
			return nil, "", fmt.Errorf("template %s styles: %w", model.Config.TemplateID, err)
		}
	}

	merged, err := s.merger.MergeTemplate(template, model)
	if err != nil {
		return nil, "", fmt.Errorf("template %s: %w", model.Config.TemplateID, err)
	}
	return &Preview{Model: model, Document: merged, Styles: styles}, actorID, nil
}
