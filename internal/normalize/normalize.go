// Package normalize is the structural repair pass: it regenerates stable
// identifiers and fills every required field after imports, migrations or
// hand-edited documents have produced malformed records.
package normalize

import (
	"strings"

	"github.com/ncharlet/bibliart/internal/models"
)

// PlaceholderName replaces a missing artist name.
const PlaceholderName = "unnamed"

// Repair walks the whole collection in order and returns a normalized copy
// plus a report. Artist ids are reassigned sequentially from 1 across the
// pass; artwork ids restart at 1 per artist. It never fails: unrepairable
// values are replaced with defaults. Running it twice renumbers again but
// changes nothing else.
func Repair(artists []models.Artist) ([]models.Artist, models.RepairReport) {
	out := models.CloneCollection(artists)
	report := models.RepairReport{ArtistIDMap: make(map[models.ID]models.ID, len(out))}

	nextID := models.ID(1)
	for i := range out {
		a := &out[i]

		report.ArtistIDMap[a.ID] = nextID
		if a.ID != nextID {
			report.ArtistsRenumbered++
		}
		a.ID = nextID
		nextID++

		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			a.Name = PlaceholderName
			report.FieldsDefaulted++
		}
		a.Birthplace = strings.TrimSpace(a.Birthplace)
		a.Style = strings.TrimSpace(a.Style)
		if a.Artworks == nil {
			a.Artworks = []models.Artwork{}
			report.FieldsDefaulted++
		}

		repairArtworks(a, &report)
	}
	return out, report
}

func repairArtworks(a *models.Artist, report *models.RepairReport) {
	// Artwork ids are scoped to the owning artist, independent of the
	// artist-level counter.
	nextID := models.ID(1)
	for i := range a.Artworks {
		aw := &a.Artworks[i]
		if aw.ID != nextID {
			report.ArtworksRenumbered++
		}
		aw.ID = nextID
		nextID++

		if aw.Stats == nil {
			aw.Stats = &models.Statistics{}
			report.FieldsDefaulted++
		}
		// Missing or non-numeric counters already decoded to zero; the
		// success rate is never recomputed here, that belongs to scoring.
	}
}
