package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/services/identity"
	"github.com/de-tools/work-reports/pkg/store/objectstore"
	"github.com/rs/zerolog"
)

const DefaultURLTTL = time.Hour

type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// History gives access to previously generated reports of the effective actor.
type History interface {
	List(ctx context.Context, companyID, onBehalfOf string) ([]domain.GeneratedArtifactRecord, error)
	// Delete removes the tracking record. The stored object is kept.
	Delete(ctx context.Context, id, onBehalfOf string) error
	DownloadURL(ctx context.Context, id, onBehalfOf string) (*SignedURL, error)
}

type history struct {
	authz   identity.Authorizer
	records ArtifactRecords
	objects objectstore.Store
	ttl     time.Duration
	now     func() time.Time
}

func NewHistory(authz identity.Authorizer, records ArtifactRecords, objects objectstore.Store, ttl time.Duration) History {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &history{
		authz:   authz,
		records: records,
		objects: objects,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (h *history) List(ctx context.Context, companyID, onBehalfOf string) ([]domain.GeneratedArtifactRecord, error) {
	actorID, err := h.authz.EffectiveActor(ctx, onBehalfOf)
	if err != nil {
		return nil, err
	}
	return h.records.List(ctx, actorID, companyID)
}

func (h *history) Delete(ctx context.Context, id, onBehalfOf string) error {
	record, err := h.owned(ctx, id, onBehalfOf)
	if err != nil {
		return err
	}
	if err := h.records.Delete(ctx, record.ID); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("report_id", id).Msg("generated report record deleted")
	return nil
}

func (h *history) DownloadURL(ctx context.Context, id, onBehalfOf string) (*SignedURL, error) {
	record, err := h.owned(ctx, id, onBehalfOf)
	if err != nil {
		return nil, err
	}
	if record.StoragePath == nil || *record.StoragePath == "" {
		return nil, fmt.Errorf("%w: generated report %s has no stored artifact", domain.ErrNotFound, id)
	}
	if h.objects == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrNotFound)
	}

	expiresAt := h.now().Add(h.ttl)
	url, err := h.objects.SignedURL(ctx, *record.StoragePath, h.ttl)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: stored artifact %s", domain.ErrNotFound, *record.StoragePath)
	}
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", *record.StoragePath, err)
	}
	return &SignedURL{URL: url, ExpiresAt: expiresAt}, nil
}

// owned loads a record and hides it unless it belongs to the effective actor.
func (h *history) owned(ctx context.Context, id, onBehalfOf string) (domain.GeneratedArtifactRecord, error) {
	actorID, err := h.authz.EffectiveActor(ctx, onBehalfOf)
	if err != nil {
		return domain.GeneratedArtifactRecord{}, err
	}
	record, err := h.records.Get(ctx, id)
	if err != nil {
		return domain.GeneratedArtifactRecord{}, err
	}
	if record.ActorID != actorID {
		return domain.GeneratedArtifactRecord{}, fmt.Errorf("%w: generated report %s", domain.ErrNotFound, id)
	}
	return record, nil
}
