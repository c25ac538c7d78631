package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/store"
	"github.com/ncharlet/bibliart/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	dir   string
	store *store.Store
}

func (s *StoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = testutil.NewStoreAt(s.T(), s.dir, 0)
}

func sampleCollection() []models.Artist {
	return []models.Artist{
		{
			ID:         1,
			Name:       "Claude Monet",
			BirthYear:  models.NewYear(1840),
			DeathYear:  models.NewYear(1926),
			Birthplace: "Paris",
			Style:      "Impressionism",
			Bio:        "Founder of impressionist painting.",
			Portrait:   models.NewPayload("image/jpeg", []byte("portrait-bytes")),
			Artworks: []models.Artwork{
				{
					ID:        2,
					Title:     "Impression, soleil levant",
					Date:      "1872",
					Technique: "Oil on canvas",
					Image:     models.NewPayload("image/jpeg", []byte("image-bytes")),
					Analysis:  "Gave the movement its name.",
					Stats: &models.Statistics{
						Played: 4, Correct: 3, Wrong: 1,
						ArtistCorrect: 3, TitleCorrect: 2, DateCorrect: 1,
						SuccessRate: 75,
					},
				},
				{
					ID:    3,
					Title: "Nympheas",
					Image: models.NewPayload("image/jpeg", []byte("more-bytes")),
				},
			},
		},
		{
			ID:       4,
			Name:     "Berthe Morisot",
			Artworks: []models.Artwork{},
		},
	}
}

func (s *StoreSuite) TestReplaceAndLoadRoundTrip() {
	ctx := context.Background()
	want := sampleCollection()

	s.Require().NoError(s.store.ReplaceAll(ctx, want))

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Equal(want, got)
	s.Require().NoError(s.store.LastLoadError())
}

func (s *StoreSuite) TestReplaceAllOverwritesPrevious() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sampleCollection()))
	s.Require().NoError(s.store.ReplaceAll(ctx, []models.Artist{{ID: 9, Name: "Solo", Artworks: []models.Artwork{}}}))

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Require().Equal("Solo", got[0].Name)
}

func (s *StoreSuite) TestLoadAllEmptyStore() {
	got, err := s.store.LoadAll(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Require().Empty(got)
}

func (s *StoreSuite) TestLoadAllCorruptBackendReportsCondition() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sampleCollection()))
	s.Require().NoError(s.store.LastLoadError())

	// Break the schema out from under the store.
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(s.dir, "test.db"))
	s.Require().NoError(err)
	_, err = db.Exec(`DROP TABLE artworks`)
	s.Require().NoError(err)
	s.Require().NoError(db.Close())

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err, "corruption is reported, not raised")
	s.Require().NotNil(got)
	s.Require().Empty(got)
	s.Require().True(errors.IsCode(s.store.LastLoadError(), errors.ErrCodeLoadFailed))
}

func (s *StoreSuite) TestNotInitialized() {
	st := store.New("file:"+filepath.Join(s.T().TempDir(), "x.db"), "", 0)

	_, err := st.LoadAll(context.Background())
	s.Require().True(errors.IsCode(err, errors.ErrCodeNotInitialized))

	err = st.ReplaceAll(context.Background(), nil)
	s.Require().True(errors.IsCode(err, errors.ErrCodeNotInitialized))

	_, err = st.MigrateLegacy(context.Background())
	s.Require().True(errors.IsCode(err, errors.ErrCodeNotInitialized))
}

func (s *StoreSuite) TestInitializeIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sampleCollection()))
	s.Require().NoError(s.store.Initialize(ctx))

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
}

func (s *StoreSuite) TestQuotaExceededKeepsPreviousCollection() {
	ctx := context.Background()
	dir := s.T().TempDir()
	st := testutil.NewStoreAt(s.T(), dir, 2048)

	small := []models.Artist{{ID: 1, Name: "Keeper", Artworks: []models.Artwork{}}}
	s.Require().NoError(st.ReplaceAll(ctx, small))

	big := sampleCollection()
	big[0].Bio = string(make([]byte, 8192))
	err := st.ReplaceAll(ctx, big)
	s.Require().True(errors.IsCode(err, errors.ErrCodeQuotaExceeded))

	got, err := st.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Equal(small, got)
}

func (s *StoreSuite) TestMigrateLegacy() {
	ctx := context.Background()
	legacyPath := filepath.Join(s.dir, testutil.LegacyFileName)

	// Legacy documents carry the old loosely-typed shapes.
	legacy := `[{"id": "7", "name": "Degas", "birthYear": "1834", "artworks": [{"id": 1710000000000.42, "title": "La Classe de danse", "image": "x"}]}]`
	s.Require().NoError(os.WriteFile(legacyPath, []byte(legacy), 0o644))

	migrated, err := s.store.MigrateLegacy(ctx)
	s.Require().NoError(err)
	s.Require().True(migrated)

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Require().Equal("Degas", got[0].Name)
	s.Require().Equal(models.NewYear(1834), got[0].BirthYear)
	s.Require().Len(got[0].Artworks, 1)

	_, statErr := os.Stat(legacyPath)
	s.Require().True(os.IsNotExist(statErr), "legacy file should be deleted after a durable write")

	// Second call is a no-op.
	migrated, err = s.store.MigrateLegacy(ctx)
	s.Require().NoError(err)
	s.Require().False(migrated)

	got, err = s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
}

func (s *StoreSuite) TestMigrateLegacyCollidingIDs() {
	ctx := context.Background()
	legacyPath := filepath.Join(s.dir, testutil.LegacyFileName)

	// Timestamp-minted artwork ids truncate to the same integer when two
	// cards were created in the same millisecond; garbage artist ids all
	// decode to zero. Both collide on the backend's uniqueness constraints
	// unless renumbered during ingestion.
	legacy := `[
		{"id": "a", "name": "Degas", "artworks": [
			{"id": 1710000000000.41, "title": "La Classe de danse", "image": "x"},
			{"id": 1710000000000.87, "title": "L'Absinthe", "image": "y"}
		]},
		{"id": "b", "name": "Caillebotte", "artworks": []}
	]`
	s.Require().NoError(os.WriteFile(legacyPath, []byte(legacy), 0o644))

	migrated, err := s.store.MigrateLegacy(ctx)
	s.Require().NoError(err)
	s.Require().True(migrated)

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Require().Equal(models.ID(1), got[0].ID)
	s.Require().Equal(models.ID(2), got[1].ID)
	s.Require().Len(got[0].Artworks, 2)
	s.Require().Equal(models.ID(1), got[0].Artworks[0].ID)
	s.Require().Equal(models.ID(2), got[0].Artworks[1].ID)

	_, statErr := os.Stat(legacyPath)
	s.Require().True(os.IsNotExist(statErr))
}

func (s *StoreSuite) TestMigrateLegacyUnparseableFileKept() {
	ctx := context.Background()
	legacyPath := filepath.Join(s.dir, testutil.LegacyFileName)
	s.Require().NoError(os.WriteFile(legacyPath, []byte("{not json"), 0o644))

	migrated, err := s.store.MigrateLegacy(ctx)
	s.Require().NoError(err)
	s.Require().False(migrated)

	_, statErr := os.Stat(legacyPath)
	s.Require().NoError(statErr, "unparseable legacy file must not be destroyed")
}

func (s *StoreSuite) TestNextIDSeededFromCollection() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sampleCollection()))

	// Highest stored id is 4; minting continues above it.
	s.Require().Equal(models.ID(5), s.store.NextID())
	s.Require().Equal(models.ID(6), s.store.NextID())
}

func (s *StoreSuite) TestUsageReportsFileSize() {
	ctx := context.Background()
	st := testutil.NewStoreAt(s.T(), s.T().TempDir(), 1<<20)
	s.Require().NoError(st.ReplaceAll(ctx, sampleCollection()))

	usage, err := st.Usage()
	s.Require().NoError(err)
	s.Require().Greater(usage.UsedBytes, int64(0))
	s.Require().Equal(int64(1<<20), usage.QuotaBytes)
}

func (s *StoreSuite) TestSearchArtists() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sampleCollection()))

	byName, err := s.store.SearchArtists(ctx, models.ArtistFilter{NameLike: "mori"})
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Require().Equal("Berthe Morisot", byName[0].Name)

	byStyle, err := s.store.SearchArtists(ctx, models.ArtistFilter{Style: "Impressionism"})
	s.Require().NoError(err)
	s.Require().Len(byStyle, 1)
	s.Require().Equal("Claude Monet", byStyle[0].Name)

	sorted, err := s.store.SearchArtists(ctx, models.ArtistFilter{SortBy: "name"})
	s.Require().NoError(err)
	s.Require().Len(sorted, 2)
	s.Require().Equal("Berthe Morisot", sorted[0].Name)
}

func (s *StoreSuite) TestRoundTripThroughJSONDocument() {
	// The stored collection is shape-identical to the export document.
	ctx := context.Background()
	want := sampleCollection()
	s.Require().NoError(s.store.ReplaceAll(ctx, want))

	loaded, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)

	doc, err := json.Marshal(loaded)
	s.Require().NoError(err)
	var decoded []models.Artist
	s.Require().NoError(json.Unmarshal(doc, &decoded))
	s.Require().Equal(want, decoded)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
