package importer

import (
	"strings"

	"github.com/ncharlet/bibliart/internal/models"
)

// UntitledWork replaces a grouped card's missing title.
const UntitledWork = "Untitled"

// MergeGroupedCards folds quiz cards into the collection. Cards group by
// exact artist name; an existing artist (exact match) is reused, otherwise
// one is created with empty biographical fields. Within a group a card is
// a duplicate when the artist already has an artwork with the same
// (title, date) pair. The input collection is not mutated; ids come from
// the caller's mint.
func MergeGroupedCards(collection []models.Artist, cards []GroupedCard, mint func() models.ID) ([]models.Artist, models.GroupedReport) {
	out := models.CloneCollection(collection)
	report := models.GroupedReport{}

	// Group in first-seen order so created artists keep the file's order.
	var order []string
	groups := map[string][]GroupedCard{}
	for _, card := range cards {
		if card.Artist == "" {
			continue
		}
		if _, ok := groups[card.Artist]; !ok {
			order = append(order, card.Artist)
		}
		groups[card.Artist] = append(groups[card.Artist], card)
	}

	for _, name := range order {
		idx := -1
		for i := range out {
			if out[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, models.Artist{
				ID:       mint(),
				Name:     name,
				Artworks: []models.Artwork{},
			})
			idx = len(out) - 1
			report.ArtistsCreated++
		}

		artist := &out[idx]
		for _, card := range groups[name] {
			title := card.Title
			if title == "" {
				title = UntitledWork
			}
			if hasWork(artist, title, card.Date) {
				report.DuplicatesSkipped++
				continue
			}
			artist.Artworks = append(artist.Artworks, models.Artwork{
				ID:       mint(),
				Title:    title,
				Date:     card.Date,
				Image:    card.Image,
				Analysis: card.Note,
			})
			report.ArtworksImported++
		}
	}
	return out, report
}

func hasWork(a *models.Artist, title, date string) bool {
	for _, aw := range a.Artworks {
		if aw.Title == title && aw.Date == date {
			return true
		}
	}
	return false
}

// MergeStats overwrites artwork statistics from quiz results. Matching is
// case-insensitive on artist name and work title; cards with no match are
// silently skipped and never create records. Nothing but the stats record
// is ever touched.
func MergeStats(collection []models.Artist, cards []StatsCard) ([]models.Artist, models.StatsReport) {
	out := models.CloneCollection(collection)
	report := models.StatsReport{}

	for _, card := range cards {
		aw := findWork(out, card.Artist, card.Title)
		if aw == nil {
			report.Skipped++
			continue
		}
		stats := card.Stats
		aw.Stats = &stats
		report.Matched++
	}
	return out, report
}

func findWork(collection []models.Artist, artist, title string) *models.Artwork {
	for i := range collection {
		if !strings.EqualFold(collection[i].Name, artist) {
			continue
		}
		for j := range collection[i].Artworks {
			if strings.EqualFold(collection[i].Artworks[j].Title, title) {
				return &collection[i].Artworks[j]
			}
		}
	}
	return nil
}
