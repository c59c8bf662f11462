package report

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/observability"
	"github.com/de-tools/work-reports/pkg/store/objectstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const ContentTypePDF = "application/pdf"

// BuildStoragePath is the object path of a report. It depends only on its arguments, so
// regenerating a report overwrites the previous object.
func BuildStoragePath(actorID, companyID string, period domain.Period) string {
	return fmt.Sprintf("%s/%s/%s.pdf", actorID, companyID, period)
}

// Download is a rendered report ready to hand to the caller.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

func NewDownload(period domain.Period, artifact []byte) Download {
	return Download{
		Filename:    fmt.Sprintf("work-report-%s.pdf", period),
		ContentType: ContentTypePDF,
		Body:        artifact,
	}
}

// Sink receives the local copy of a report: an HTTP response, a file on disk.
type Sink interface {
	Deliver(ctx context.Context, d Download) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, d Download) error

func (f SinkFunc) Deliver(ctx context.Context, d Download) error {
	return f(ctx, d)
}

type DeliveryRequest struct {
	ActorID    string
	CompanyID  string
	Period     domain.Period
	ReportDate time.Time
	Persist    bool
	Sink       Sink
}

type DeliveryResult struct {
	Download Download
	// Record is set when the report was persisted.
	Record *domain.GeneratedArtifactRecord
}

type Orchestrator interface {
	Deliver(ctx context.Context, artifact []byte, req DeliveryRequest) (*DeliveryResult, error)
}

type orchestrator struct {
	objects objectstore.Store
	records ArtifactRecords
	metrics *observability.Metrics
	now     func() time.Time
	newID   func() string
}

func NewOrchestrator(objects objectstore.Store, records ArtifactRecords, metrics *observability.Metrics) Orchestrator {
	return &orchestrator{
		objects: objects,
		records: records,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Deliver hands artifact to req.Sink. With Persist set the artifact is first uploaded and tracked;
// both steps must succeed before the sink is called. An upload that succeeds followed by a failed
// record write leaves the object orphaned and returns ErrMetadataWriteFailed.
func (o *orchestrator) Deliver(ctx context.Context, artifact []byte, req DeliveryRequest) (*DeliveryResult, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("actor_id", req.ActorID).
		Str("company_id", req.CompanyID).
		Str("period", req.Period.String()).
		Bool("persist", req.Persist).
		Logger()

	result := &DeliveryResult{Download: NewDownload(req.Period, artifact)}

	if req.Persist {
		if o.objects == nil || o.records == nil {
			return nil, fmt.Errorf("%w: persistence is not configured", domain.ErrStorageUploadFailed)
		}

		path := BuildStoragePath(req.ActorID, req.CompanyID, req.Period)
		if err := o.objects.Upload(ctx, path, artifact, ContentTypePDF); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageUploadFailed, path, err)
		}
		logger.Debug().Str("path", path).Int("bytes", len(artifact)).Msg("artifact uploaded")

		record := domain.GeneratedArtifactRecord{
			ID:          o.newID(),
			ActorID:     req.ActorID,
			CompanyID:   req.CompanyID,
			Period:      req.Period,
			ReportDate:  req.ReportDate,
			StoragePath: &path,
			Persisted:   true,
			CreatedAt:   o.now().UTC(),
		}
		if err := o.records.Create(ctx, record); err != nil {
			logger.Warn().Err(err).Str("orphan_path", path).Msg("artifact stored without a tracking record")
			if o.metrics != nil {
				o.metrics.OrphanedArtifacts.Inc()
			}
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMetadataWriteFailed, path, err)
		}
		result.Record = &record
	}

	if req.Sink != nil {
		if err := req.Sink.Deliver(ctx, result.Download); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLocalDeliveryFailed, err)
		}
	}
	return result, nil
}
