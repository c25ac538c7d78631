package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/importer"
)

// handleImport merges an uploaded dataset. The kind query parameter selects
// the schema; there is no shape guessing.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := importer.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, r, errors.NewMalformedImportError("could not read upload"))
		return
	}

	result, err := s.Imports.Import(r.Context(), kind, data)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExport offers the collection as a dated JSON download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.Exports.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
