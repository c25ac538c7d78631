package services

import (
	"context"

	"github.com/ncharlet/bibliart/internal/importer"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/store"
)

// ImportResult reports what an import changed. Exactly one of the report
// fields is set, matching the kind.
type ImportResult struct {
	Kind     string                `json:"kind"`
	Replaced *int                  `json:"replaced,omitempty"`
	Grouped  *models.GroupedReport `json:"grouped,omitempty"`
	Stats    *models.StatsReport   `json:"stats,omitempty"`
}

// ImportService parses an external dataset of the selected kind and merges
// it into the live collection. A malformed file aborts with no partial
// merge; a successful merge is flushed before returning. The repair pass is
// never invoked implicitly.
type ImportService interface {
	Import(ctx context.Context, kind importer.Kind, data []byte) (*ImportResult, error)
}

type importService struct {
	catalog CatalogService
	store   *store.Store
}

// NewImportService creates a new ImportService.
func NewImportService(catalog CatalogService, st *store.Store) ImportService {
	return &importService{catalog: catalog, store: st}
}

func (s *importService) Import(ctx context.Context, kind importer.Kind, data []byte) (*ImportResult, error) {
	log := logger.FromContext(ctx).WithField("kind", kind.String())
	log.Info("importing %d bytes", len(data))

	parsed, err := importer.Parse(kind, data)
	if err != nil {
		log.Warn("import rejected: %v", err)
		return nil, err
	}

	result := &ImportResult{Kind: kind.String()}
	switch parsed.Kind {
	case importer.KindFullReplace:
		if err := s.catalog.Replace(ctx, parsed.Artists); err != nil {
			return nil, err
		}
		n := len(parsed.Artists)
		result.Replaced = &n
		log.Info("replaced collection with %d artists", n)

	case importer.KindGroupedCards:
		merged, report := importer.MergeGroupedCards(s.catalog.Snapshot(), parsed.Cards, s.store.NextID)
		if err := s.catalog.Replace(ctx, merged); err != nil {
			return nil, err
		}
		result.Grouped = &report
		log.Info("grouped merge: %d artists created, %d artworks imported, %d duplicates skipped",
			report.ArtistsCreated, report.ArtworksImported, report.DuplicatesSkipped)

	case importer.KindStats:
		merged, report := importer.MergeStats(s.catalog.Snapshot(), parsed.Stats)
		if err := s.catalog.Replace(ctx, merged); err != nil {
			return nil, err
		}
		result.Stats = &report
		log.Info("stats merge: %d matched, %d skipped", report.Matched, report.Skipped)
	}
	return result, nil
}
