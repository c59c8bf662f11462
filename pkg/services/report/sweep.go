package report

import (
	"context"
	"fmt"

	"github.com/de-tools/work-reports/pkg/observability"
	"github.com/de-tools/work-reports/pkg/store/objectstore"
	"github.com/rs/zerolog"
)

type SweepResult struct {
	Scanned int
	// Orphans are stored objects no tracking record points to.
	Orphans []objectstore.Object
	Deleted []string
}

// Sweeper reconciles object storage with tracking records. It only reports orphans unless
// deletion was enabled.
type Sweeper struct {
	objects       objectstore.Store
	records       ArtifactRecords
	metrics       *observability.Metrics
	deleteOrphans bool
}

func NewSweeper(objects objectstore.Store, records ArtifactRecords, metrics *observability.Metrics, deleteOrphans bool) *Sweeper {
	return &Sweeper{
		objects:       objects,
		records:       records,
		metrics:       metrics,
		deleteOrphans: deleteOrphans,
	}
}

func (s *Sweeper) Sweep(ctx context.Context, prefix string) (*SweepResult, error) {
	logger := zerolog.Ctx(ctx)

	objects, err := s.objects.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	paths, err := s.records.StoragePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked paths: %w", err)
	}
	tracked := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		tracked[p] = struct{}{}
	}

	result := &SweepResult{Scanned: len(objects)}
	for _, obj := range objects {
		if _, ok := tracked[obj.Path]; ok {
			continue
		}
		result.Orphans = append(result.Orphans, obj)
		logger.Warn().Str("path", obj.Path).Int64("size", obj.Size).Msg("orphaned artifact")

		if !s.deleteOrphans {
			continue
		}
		if err := s.objects.Delete(ctx, obj.Path); err != nil {
			return result, fmt.Errorf("deleting orphan %s: %w", obj.Path, err)
		}
		result.Deleted = append(result.Deleted, obj.Path)
	}

	if s.metrics != nil {
		s.metrics.SweepOrphans.Set(float64(len(result.Orphans)))
	}
	logger.Info().
		Int("scanned", result.Scanned).
		Int("orphans", len(result.Orphans)).
		Int("deleted", len(result.Deleted)).
		Msg("sweep finished")
	return result, nil
}
