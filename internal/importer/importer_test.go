package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/importer"
	"github.com/ncharlet/bibliart/internal/models"
)

func TestParseKind(t *testing.T) {
	for name, want := range map[string]importer.Kind{
		"replace": importer.KindFullReplace,
		"full":    importer.KindFullReplace,
		"cards":   importer.KindGroupedCards,
		"grouped": importer.KindGroupedCards,
		"stats":   importer.KindStats,
	} {
		kind, err := importer.ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, kind, name)
	}

	_, err := importer.ParseKind("guess")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedImport))
}

func TestParseFailsClosed(t *testing.T) {
	cases := []struct {
		name string
		kind importer.Kind
		data string
	}{
		{"replace not array", importer.KindFullReplace, `{"id": 1}`},
		{"replace element not object", importer.KindFullReplace, `[1, 2]`},
		{"replace invalid json", importer.KindFullReplace, `[{`},
		{"cards not array", importer.KindGroupedCards, `"hello"`},
		{"cards element not object", importer.KindGroupedCards, `[["x"]]`},
		{"stats object without cards", importer.KindStats, `{"decks": []}`},
		{"stats not array or object", importer.KindStats, `42`},
	}
	for _, tc := range cases {
		_, err := importer.Parse(tc.kind, []byte(tc.data))
		assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedImport), tc.name)
	}
}

func TestParseFullReplaceToleratesLegacyScalars(t *testing.T) {
	data := `[{"id": "3", "name": "Degas", "birthYear": "1834", "artworks": []}]`
	parsed, err := importer.Parse(importer.KindFullReplace, []byte(data))
	require.NoError(t, err)
	require.Len(t, parsed.Artists, 1)
	assert.Equal(t, models.ID(3), parsed.Artists[0].ID)
	assert.Equal(t, models.NewYear(1834), parsed.Artists[0].BirthYear)
}

func TestParseStatsWrappedAndBare(t *testing.T) {
	bare := `[{"artist": "Monet", "title": "Nympheas", "stats": {"played": 2}}]`
	parsed, err := importer.Parse(importer.KindStats, []byte(bare))
	require.NoError(t, err)
	require.Len(t, parsed.Stats, 1)

	wrapped := `{"cards": ` + bare + `}`
	parsed, err = importer.Parse(importer.KindStats, []byte(wrapped))
	require.NoError(t, err)
	require.Len(t, parsed.Stats, 1)
	assert.Equal(t, models.Count(2), parsed.Stats[0].Stats.Played)
}

func mintFrom(start int64) func() models.ID {
	n := start
	return func() models.ID {
		n++
		return models.ID(n)
	}
}

func TestMergeGroupedCardsIntoExistingArtist(t *testing.T) {
	collection := []models.Artist{{ID: 1, Name: "Monet", Artworks: []models.Artwork{}}}
	cards := []importer.GroupedCard{{Artist: "Monet", Title: "Nympheas", Image: models.Payload("X")}}

	merged, report := importer.MergeGroupedCards(collection, cards, mintFrom(1))

	require.Len(t, merged, 1)
	assert.Equal(t, 0, report.ArtistsCreated)
	assert.Equal(t, 1, report.ArtworksImported)

	require.Len(t, merged[0].Artworks, 1)
	aw := merged[0].Artworks[0]
	assert.Equal(t, "Nympheas", aw.Title)
	assert.Equal(t, "", aw.Analysis)
	assert.Equal(t, models.Payload("X"), aw.Image)
	assert.NotEqual(t, merged[0].ID, aw.ID, "freshly minted id distinct from the artist id")
}

func TestMergeGroupedCardsCreatesArtists(t *testing.T) {
	cards := []importer.GroupedCard{
		{Artist: "Degas", Title: "La Classe de danse", Date: "1874", Image: models.Payload("a"), Note: "ballet"},
		{Artist: "Degas", Title: "L'Absinthe", Image: models.Payload("b")},
		{Artist: "Caillebotte", Title: "Les Raboteurs", Image: models.Payload("c")},
		{Artist: "", Title: "orphan card", Image: models.Payload("d")},
	}

	merged, report := importer.MergeGroupedCards(nil, cards, mintFrom(0))

	assert.Equal(t, 2, report.ArtistsCreated)
	assert.Equal(t, 3, report.ArtworksImported)
	require.Len(t, merged, 2)
	assert.Equal(t, "Degas", merged[0].Name)
	assert.Equal(t, "ballet", merged[0].Artworks[0].Analysis)
	assert.Equal(t, "", merged[0].Bio, "created artists have empty biographical fields")
}

func TestMergeGroupedCardsSkipsDuplicates(t *testing.T) {
	cards := []importer.GroupedCard{{Artist: "Monet", Title: "Nympheas", Date: "1906", Image: models.Payload("X")}}

	merged, report := importer.MergeGroupedCards(nil, cards, mintFrom(0))
	require.Equal(t, 1, report.ArtworksImported)

	// Importing the same card again produces exactly one artwork.
	merged, report = importer.MergeGroupedCards(merged, cards, mintFrom(100))
	assert.Equal(t, 0, report.ArtworksImported)
	assert.Equal(t, 1, report.DuplicatesSkipped)
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Artworks, 1)
}

func TestMergeGroupedCardsMatchesNamesCaseSensitively(t *testing.T) {
	collection := []models.Artist{{ID: 1, Name: "Monet", Artworks: []models.Artwork{}}}
	cards := []importer.GroupedCard{{Artist: "monet", Title: "Nympheas", Image: models.Payload("X")}}

	merged, report := importer.MergeGroupedCards(collection, cards, mintFrom(1))
	assert.Equal(t, 1, report.ArtistsCreated, "exact match only; a new artist is created")
	assert.Len(t, merged, 2)
}

func TestMergeStatsOverwritesOnlyStats(t *testing.T) {
	collection := []models.Artist{{
		ID:   1,
		Name: "Monet",
		Artworks: []models.Artwork{{
			ID: 1, Title: "Nympheas", Image: models.Payload("orig"),
			Stats: &models.Statistics{Played: 1, SuccessRate: 100},
		}},
	}}
	cards := []importer.StatsCard{{
		Artist: "MONET", Title: "nympheas",
		Stats: models.Statistics{Played: 7, Correct: 5, Wrong: 2, SuccessRate: 71},
	}}

	merged, report := importer.MergeStats(collection, cards)

	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 0, report.Skipped)

	aw := merged[0].Artworks[0]
	assert.Equal(t, models.Count(7), aw.Stats.Played)
	assert.Equal(t, models.Count(71), aw.Stats.SuccessRate)
	assert.Equal(t, models.Payload("orig"), aw.Image, "content fields never change")
	assert.Equal(t, "Nympheas", aw.Title)
}

func TestMergeStatsSkipsUnknownCards(t *testing.T) {
	collection := []models.Artist{{ID: 1, Name: "Monet", Artworks: []models.Artwork{}}}
	cards := []importer.StatsCard{{Artist: "Renoir", Title: "Bal du moulin", Stats: models.Statistics{Played: 3}}}

	merged, report := importer.MergeStats(collection, cards)

	assert.Equal(t, 0, report.Matched)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, collection, merged, "no records created, nothing changed")
}
