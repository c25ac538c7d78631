package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/normalize"
)

// MigrateLegacy performs the one-time import of the legacy single-file
// document (the collection earlier versions kept as one JSON blob). The
// file is deleted only after the write to the current backend has
// committed, so a crash mid-migration re-runs it on the next startup.
// Safe to call every startup: no file means no-op.
func (s *Store) MigrateLegacy(ctx context.Context) (bool, error) {
	if err := s.ready("MigrateLegacy"); err != nil {
		return false, err
	}
	log := logger.FromContext(ctx).WithPrefix("store")

	if s.legacyPath == "" {
		return false, nil
	}
	data, err := os.ReadFile(s.legacyPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		log.Warn("legacy document unreadable, leaving it in place: %v", err)
		return false, nil
	}

	var artists []models.Artist
	if err := json.Unmarshal(data, &artists); err != nil {
		// Do not destroy what we cannot parse; the user may still recover it.
		log.Warn("legacy document is not a collection, leaving it in place: %v", err)
		return false, nil
	}

	// Legacy ids were minted from timestamps and collide once decoded to
	// integers; unparseable ids all decode to zero. Renumber before the
	// backend's uniqueness constraints see them.
	repaired, report := normalize.Repair(artists)
	if report.ArtistsRenumbered > 0 || report.ArtworksRenumbered > 0 {
		log.Info("legacy ids renumbered: %d artists, %d artworks",
			report.ArtistsRenumbered, report.ArtworksRenumbered)
	}

	log.Info("migrating legacy document: %d artists from %s", len(repaired), s.legacyPath)
	if err := s.ReplaceAll(ctx, repaired); err != nil {
		return false, err
	}

	if err := os.Remove(s.legacyPath); err != nil {
		// The write is durable; a leftover file only means a redundant
		// re-migration next startup.
		log.Warn("could not delete legacy document: %v", err)
	}
	log.Info("legacy migration complete")
	return true, nil
}
