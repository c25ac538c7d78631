package services

import (
	"context"
	"sync"

	"github.com/ncharlet/bibliart/internal/codec"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/normalize"
	"github.com/ncharlet/bibliart/internal/worker"
)

// MaintenanceService runs the repair pass and bulk recompression.
// Recompression is a background job: slow, touches every payload, and must
// never hold up the UI seam.
type MaintenanceService interface {
	Repair(ctx context.Context, sess *models.Session) (models.RepairReport, error)
	EnqueueRecompress(ctx context.Context, aggressive bool) error
	LastRecompress() (*models.RecompressReport, error)
}

type maintenanceService struct {
	catalog CatalogService
	pool    *worker.Pool

	mu         sync.Mutex
	lastReport *models.RecompressReport
	lastErr    error
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(catalog CatalogService, pool *worker.Pool) MaintenanceService {
	return &maintenanceService{catalog: catalog, pool: pool}
}

// Repair normalizes the whole collection, flushes it, and remaps the
// caller's selection through the id table.
func (s *maintenanceService) Repair(ctx context.Context, sess *models.Session) (models.RepairReport, error) {
	log := logger.FromContext(ctx)

	repaired, report := normalize.Repair(s.catalog.Snapshot())
	if err := s.catalog.Replace(ctx, repaired); err != nil {
		return models.RepairReport{}, err
	}
	sess.Remap(report.ArtistIDMap)

	log.Info("repair: %d artists renumbered, %d artworks renumbered, %d fields defaulted",
		report.ArtistsRenumbered, report.ArtworksRenumbered, report.FieldsDefaulted)
	return report, nil
}

// EnqueueRecompress submits a bulk recompression job. The aggressive
// presets trade quality for space when storage is nearly exhausted.
func (s *maintenanceService) EnqueueRecompress(ctx context.Context, aggressive bool) error {
	job := &recompressJob{svc: s, aggressive: aggressive}
	if err := s.pool.Submit(job); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("recompression queued (aggressive=%v)", aggressive)
	return nil
}

// LastRecompress returns the report of the most recent finished batch and
// the flush error, if the batch result could not be persisted.
func (s *maintenanceService) LastRecompress() (*models.RecompressReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReport == nil {
		return nil, s.lastErr
	}
	report := *s.lastReport
	return &report, s.lastErr
}

func (s *maintenanceService) setLast(report *models.RecompressReport, err error) {
	s.mu.Lock()
	s.lastReport = report
	s.lastErr = err
	s.mu.Unlock()
}

type recompressJob struct {
	svc        *maintenanceService
	aggressive bool
}

func (j *recompressJob) Name() string {
	if j.aggressive {
		return "recompress-aggressive"
	}
	return "recompress"
}

func (j *recompressJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	portrait, artwork := codec.PresetPortrait, codec.PresetArtwork
	if j.aggressive {
		portrait, artwork = codec.PresetAggressivePortrait, codec.PresetAggressiveArtwork
	}

	recompressed, report, err := codec.RecompressCollection(ctx, j.svc.catalog.Snapshot(), portrait, artwork)
	if err != nil {
		// Cancelled between items; nothing was flushed.
		j.svc.setLast(&report, err)
		return err
	}
	if report.BytesAfter > report.BytesBefore {
		// Best-effort transform: keep the result, just flag the regression.
		log.Warn("recompression grew payloads: %d -> %d bytes", report.BytesBefore, report.BytesAfter)
	}

	// Results land as a per-id payload merge, not a collection swap: the
	// batch worked on a snapshot, and anything mutated through the API
	// since then must win. The flush outcome is still authoritative; a
	// failed merge aborts the batch rather than reporting partial success.
	if err := j.svc.catalog.MergeImages(ctx, recompressed); err != nil {
		j.svc.setLast(&report, err)
		return err
	}
	j.svc.setLast(&report, nil)
	return nil
}
