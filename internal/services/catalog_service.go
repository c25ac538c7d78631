package services

import (
	"context"
	"strings"
	"sync"

	"github.com/ncharlet/bibliart/internal/codec"
	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/quota"
	"github.com/ncharlet/bibliart/internal/store"
)

// ArtworkInput carries the editable fields of an artwork. Image holds raw
// uploaded bytes and may be nil on update to keep the stored payload.
type ArtworkInput struct {
	Title     string
	Date      string
	Technique string
	Analysis  string
	Image     []byte
}

// CatalogService owns the in-memory collection cache and every direct
// mutation of it. The cache mirrors the durable copy: mutations are built
// on a copy, flushed through the store, and only then become visible.
type CatalogService interface {
	Load(ctx context.Context) error
	Snapshot() []models.Artist
	Artist(id models.ID) (models.Artist, error)
	CreateArtist(ctx context.Context) models.Artist
	SaveArtist(ctx context.Context, artist models.Artist) error
	DeleteArtist(ctx context.Context, id models.ID) error
	SetPortrait(ctx context.Context, artistID models.ID, image []byte) error
	AddArtwork(ctx context.Context, artistID models.ID, in ArtworkInput) (models.Artwork, error)
	UpdateArtwork(ctx context.Context, artistID, artworkID models.ID, in ArtworkInput) error
	DeleteArtwork(ctx context.Context, artistID, artworkID models.ID) error
	// Replace swaps the whole collection (imports, repair) and flushes it.
	Replace(ctx context.Context, artists []models.Artist) error
	// MergeImages overwrites portrait and artwork image payloads by id,
	// skipping records that no longer exist. Bulk recompression lands its
	// results through here so edits made while the batch ran are kept.
	MergeImages(ctx context.Context, artists []models.Artist) error
}

type catalogService struct {
	mu      sync.Mutex
	artists []models.Artist
	// drafts holds ids of created-but-never-saved artists. They live in the
	// cache so the editor can see them, but are withheld from every flush
	// until their first valid save.
	drafts map[models.ID]struct{}

	store   *store.Store
	monitor *quota.Monitor
}

// NewCatalogService creates a CatalogService over the given store.
func NewCatalogService(st *store.Store, monitor *quota.Monitor) CatalogService {
	return &catalogService{store: st, monitor: monitor, drafts: map[models.ID]struct{}{}}
}

// Load fills the cache from the durable copy.
func (s *catalogService) Load(ctx context.Context) error {
	artists, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.artists = artists
	s.mu.Unlock()
	logger.FromContext(ctx).Info("catalog loaded: %d artists", len(artists))
	return nil
}

// Snapshot returns a deep copy of the cached collection.
func (s *catalogService) Snapshot() []models.Artist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneCollection(s.artists)
}

func (s *catalogService) Artist(id models.ID) (models.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.artists {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return models.Artist{}, errors.NewNotFoundError("artist", id)
}

// CreateArtist appends a blank artist with a freshly minted id. Deliberately
// not flushed: the entry becomes durable on its first valid save, matching
// the editor flow where a new card may be abandoned. Until then it is a
// draft and stays out of every flush, its own and anyone else's.
func (s *catalogService) CreateArtist(ctx context.Context) models.Artist {
	artist := models.Artist{
		ID:       s.store.NextID(),
		Artworks: []models.Artwork{},
	}
	s.mu.Lock()
	s.artists = append(s.artists, artist)
	s.drafts[artist.ID] = struct{}{}
	s.mu.Unlock()
	logger.FromContext(ctx).Debug("created artist id=%d", artist.ID)
	return artist
}

// SaveArtist updates an artist's biographical fields. The name is required;
// validation failures never reach the store.
func (s *catalogService) SaveArtist(ctx context.Context, artist models.Artist) error {
	artist.Name = strings.TrimSpace(artist.Name)
	if artist.Name == "" {
		return errors.NewValidationError("name", "must not be empty")
	}

	return s.mutatePromoting(ctx, artist.ID, func(artists []models.Artist) ([]models.Artist, error) {
		for i := range artists {
			if artists[i].ID != artist.ID {
				continue
			}
			artists[i].Name = artist.Name
			artists[i].BirthYear = artist.BirthYear
			artists[i].DeathYear = artist.DeathYear
			artists[i].Birthplace = strings.TrimSpace(artist.Birthplace)
			artists[i].Style = strings.TrimSpace(artist.Style)
			artists[i].Bio = strings.TrimSpace(artist.Bio)
			return artists, nil
		}
		return nil, errors.NewNotFoundError("artist", artist.ID)
	})
}

func (s *catalogService) DeleteArtist(ctx context.Context, id models.ID) error {
	// An abandoned draft was never persisted; dropping it is a pure cache
	// operation.
	s.mu.Lock()
	if _, draft := s.drafts[id]; draft {
		for i := range s.artists {
			if s.artists[i].ID == id {
				s.artists = append(s.artists[:i], s.artists[i+1:]...)
				break
			}
		}
		delete(s.drafts, id)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.mutate(ctx, func(artists []models.Artist) ([]models.Artist, error) {
		for i := range artists {
			if artists[i].ID == id {
				return append(artists[:i], artists[i+1:]...), nil
			}
		}
		return nil, errors.NewNotFoundError("artist", id)
	})
}

// SetPortrait compresses and stores an artist portrait.
func (s *catalogService) SetPortrait(ctx context.Context, artistID models.ID, image []byte) error {
	if len(image) == 0 {
		return errors.NewValidationError("portrait", "image is required")
	}
	payload, err := codec.Compress(image, codec.PresetPortrait.MaxWidth, codec.PresetPortrait.Quality)
	if err != nil {
		return err
	}
	return s.mutate(ctx, func(artists []models.Artist) ([]models.Artist, error) {
		for i := range artists {
			if artists[i].ID == artistID {
				artists[i].Portrait = payload
				return artists, nil
			}
		}
		return nil, errors.NewNotFoundError("artist", artistID)
	})
}

// AddArtwork validates, compresses and appends a new artwork. Title and
// image are required before any write is attempted.
func (s *catalogService) AddArtwork(ctx context.Context, artistID models.ID, in ArtworkInput) (models.Artwork, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Artwork{}, errors.NewValidationError("title", "must not be empty")
	}
	if len(in.Image) == 0 {
		return models.Artwork{}, errors.NewValidationError("image", "image is required")
	}
	payload, err := codec.Compress(in.Image, codec.PresetArtwork.MaxWidth, codec.PresetArtwork.Quality)
	if err != nil {
		return models.Artwork{}, err
	}

	artwork := models.Artwork{
		ID:        s.store.NextID(),
		Title:     strings.TrimSpace(in.Title),
		Date:      strings.TrimSpace(in.Date),
		Technique: strings.TrimSpace(in.Technique),
		Image:     payload,
		Analysis:  strings.TrimSpace(in.Analysis),
	}
	err = s.mutate(ctx, func(artists []models.Artist) ([]models.Artist, error) {
		for i := range artists {
			if artists[i].ID == artistID {
				artists[i].Artworks = append(artists[i].Artworks, artwork)
				return artists, nil
			}
		}
		return nil, errors.NewNotFoundError("artist", artistID)
	})
	if err != nil {
		return models.Artwork{}, err
	}
	return artwork, nil
}

func (s *catalogService) UpdateArtwork(ctx context.Context, artistID, artworkID models.ID, in ArtworkInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.NewValidationError("title", "must not be empty")
	}
	var payload models.Payload
	if len(in.Image) > 0 {
		var err error
		payload, err = codec.Compress(in.Image, codec.PresetArtwork.MaxWidth, codec.PresetArtwork.Quality)
		if err != nil {
			return err
		}
	}

	return s.mutate(ctx, func(artists []models.Artist) ([]models.Artist, error) {
		aw, err := findArtwork(artists, artistID, artworkID)
		if err != nil {
			return nil, err
		}
		aw.Title = strings.TrimSpace(in.Title)
		aw.Date = strings.TrimSpace(in.Date)
		aw.Technique = strings.TrimSpace(in.Technique)
		aw.Analysis = strings.TrimSpace(in.Analysis)
		if !payload.IsZero() {
			aw.Image = payload
		}
		return artists, nil
	})
}

func (s *catalogService) DeleteArtwork(ctx context.Context, artistID, artworkID models.ID) error {
	return s.mutate(ctx, func(artists []models.Artist) ([]models.Artist, error) {
		for i := range artists {
			if artists[i].ID != artistID {
				continue
			}
			for j := range artists[i].Artworks {
				if artists[i].Artworks[j].ID == artworkID {
					artists[i].Artworks = append(artists[i].Artworks[:j], artists[i].Artworks[j+1:]...)
					return artists, nil
				}
			}
			return nil, errors.NewNotFoundError("artwork", artworkID)
		}
		return nil, errors.NewNotFoundError("artist", artistID)
	})
}

func (s *catalogService) Replace(ctx context.Context, artists []models.Artist) error {
	return s.mutate(ctx, func([]models.Artist) ([]models.Artist, error) {
		return models.CloneCollection(artists), nil
	})
}

func (s *catalogService) MergeImages(ctx context.Context, artists []models.Artist) error {
	return s.mutate(ctx, func(current []models.Artist) ([]models.Artist, error) {
		for i := range current {
			src := artistByID(artists, current[i].ID)
			if src == nil {
				continue
			}
			current[i].Portrait = src.Portrait
			for j := range current[i].Artworks {
				if aw := artworkByID(src.Artworks, current[i].Artworks[j].ID); aw != nil {
					current[i].Artworks[j].Image = aw.Image
				}
			}
		}
		return current, nil
	})
}

func artistByID(artists []models.Artist, id models.ID) *models.Artist {
	for i := range artists {
		if artists[i].ID == id {
			return &artists[i]
		}
	}
	return nil
}

func artworkByID(artworks []models.Artwork, id models.ID) *models.Artwork {
	for i := range artworks {
		if artworks[i].ID == id {
			return &artworks[i]
		}
	}
	return nil
}

// mutate applies fn to a copy of the cache, flushes the result, and commits
// it to the cache only after the store accepted it. A failed flush leaves
// both the cache and the durable copy on the previous collection.
func (s *catalogService) mutate(ctx context.Context, fn func([]models.Artist) ([]models.Artist, error)) error {
	return s.mutatePromoting(ctx, 0, fn)
}

// mutatePromoting is mutate with draft handling: drafts are withheld from
// the flushed collection, except the one named by promote, which this
// mutation makes durable. A failed flush keeps promote a draft.
func (s *catalogService) mutatePromoting(ctx context.Context, promote models.ID, fn func([]models.Artist) ([]models.Artist, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(models.CloneCollection(s.artists))
	if err != nil {
		return err
	}
	if err := s.store.ReplaceAll(ctx, s.durable(next, promote)); err != nil {
		return err
	}
	s.artists = next
	if promote != 0 {
		delete(s.drafts, promote)
	}
	s.pruneDrafts(next)

	if s.monitor != nil {
		s.monitor.Check(ctx)
	}
	return nil
}

// durable filters drafts out of the collection handed to the store.
func (s *catalogService) durable(artists []models.Artist, promote models.ID) []models.Artist {
	if len(s.drafts) == 0 {
		return artists
	}
	out := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		if _, draft := s.drafts[a.ID]; draft && a.ID != promote {
			continue
		}
		out = append(out, a)
	}
	return out
}

// pruneDrafts drops draft ids that no longer exist in the cache, e.g. after
// a full replacement or a repair pass renumbered the collection.
func (s *catalogService) pruneDrafts(next []models.Artist) {
	for id := range s.drafts {
		found := false
		for i := range next {
			if next[i].ID == id {
				found = true
				break
			}
		}
		if !found {
			delete(s.drafts, id)
		}
	}
}

func findArtwork(artists []models.Artist, artistID, artworkID models.ID) (*models.Artwork, error) {
	for i := range artists {
		if artists[i].ID != artistID {
			continue
		}
		for j := range artists[i].Artworks {
			if artists[i].Artworks[j].ID == artworkID {
				return &artists[i].Artworks[j], nil
			}
		}
		return nil, errors.NewNotFoundError("artwork", artworkID)
	}
	return nil, errors.NewNotFoundError("artist", artistID)
}
