package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/artists", s.handleListArtists)
		r.Post("/artists", s.handleCreateArtist)
		r.Get("/artists/{id}", s.handleGetArtist)
		r.Put("/artists/{id}", s.handleSaveArtist)
		r.Delete("/artists/{id}", s.handleDeleteArtist)
		r.Post("/artists/{id}/portrait", s.handleSetPortrait)

		r.Post("/artists/{id}/artworks", s.handleAddArtwork)
		r.Put("/artists/{id}/artworks/{artworkID}", s.handleUpdateArtwork)
		r.Delete("/artists/{id}/artworks/{artworkID}", s.handleDeleteArtwork)

		r.Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)

		r.Post("/maintenance/repair", s.handleRepair)
		r.Post("/maintenance/recompress", s.handleRecompress)
		r.Get("/maintenance/recompress", s.handleRecompressStatus)

		r.Get("/usage", s.handleUsage)
		r.Get("/session", s.handleGetSession)
		r.Put("/session", s.handlePutSession)
	})

	return r
}
