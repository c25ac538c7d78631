package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

// maxUploadBytes caps portrait and artwork uploads before compression.
const maxUploadBytes = 32 << 20

func artistID(r *http.Request) (models.ID, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("id", "must be an integer")
	}
	return models.ID(n), nil
}

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ArtistFilter{
		NameLike: q.Get("q"),
		Style:    q.Get("style"),
		SortBy:   q.Get("sort"),
	}

	// Filtered listings go straight to the store's search path; the plain
	// listing is the cached collection with artworks included.
	if filter.NameLike != "" || filter.Style != "" || filter.SortBy != "" {
		artists, err := s.Store.SearchArtists(r.Context(), filter)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, artists)
		return
	}
	writeJSON(w, http.StatusOK, s.Catalog.Snapshot())
}

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	artist := s.Catalog.CreateArtist(r.Context())
	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	artist, err := s.Catalog.Artist(id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

type saveArtistRequest struct {
	Name       string      `json:"name"`
	BirthYear  models.Year `json:"birthYear"`
	DeathYear  models.Year `json:"deathYear"`
	Birthplace string      `json:"birthplace"`
	Style      string      `json:"style"`
	Bio        string      `json:"bio"`
}

func (s *Server) handleSaveArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req saveArtistRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	err = s.Catalog.SaveArtist(r.Context(), models.Artist{
		ID:         id,
		Name:       req.Name,
		BirthYear:  req.BirthYear,
		DeathYear:  req.DeathYear,
		Birthplace: req.Birthplace,
		Style:      req.Style,
		Bio:        req.Bio,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	artist, err := s.Catalog.Artist(id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Catalog.DeleteArtist(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	sess := s.Session()
	if sess.SelectedArtistID == id {
		s.SetSession(models.Session{})
	}
	logger.FromContext(r.Context()).Info("artist %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPortrait(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, r, errors.NewValidationError("portrait", "could not read upload"))
		return
	}
	if err := s.Catalog.SetPortrait(r.Context(), id, image); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
