package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/services"
)

func artworkID(r *http.Request) (models.ID, error) {
	raw := chi.URLParam(r, "artworkID")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("artworkID", "must be an integer")
	}
	return models.ID(n), nil
}

type artworkRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Technique string `json:"technique"`
	Analysis  string `json:"analysis"`
	// Image is a data URI or base64 string; empty on update keeps the
	// stored payload.
	Image models.Payload `json:"image"`
}

func (req artworkRequest) input() (services.ArtworkInput, error) {
	in := services.ArtworkInput{
		Title:     req.Title,
		Date:      req.Date,
		Technique: req.Technique,
		Analysis:  req.Analysis,
	}
	if !req.Image.IsZero() {
		raw, err := req.Image.Bytes()
		if err != nil {
			return in, errors.NewUnsupportedInputError(err)
		}
		in.Image = raw
	}
	return in, nil
}

func (s *Server) handleAddArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req artworkRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		handleError(w, r, err)
		return
	}

	artwork, err := s.Catalog.AddArtwork(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, artwork)
}

func (s *Server) handleUpdateArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	awID, err := artworkID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req artworkRequest
	if err := decodeJSONBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Catalog.UpdateArtwork(r.Context(), id, awID, in); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := artistID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	awID, err := artworkID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Catalog.DeleteArtwork(r.Context(), id, awID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSONBody decodes a JSON request body, rejecting unparseable input.
func decodeJSONBody(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxUploadBytes)).Decode(v); err != nil {
		return errors.NewValidationError("body", "invalid JSON")
	}
	return nil
}
