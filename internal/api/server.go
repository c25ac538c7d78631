package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/quota"
	"github.com/ncharlet/bibliart/internal/services"
	"github.com/ncharlet/bibliart/internal/store"
)

// Server is the JSON seam the external UI layer calls. It holds the
// single-user session so the selection pointer survives repair passes.
type Server struct {
	Catalog     services.CatalogService
	Imports     services.ImportService
	Exports     services.ExportService
	Maintenance services.MaintenanceService
	Store       *store.Store
	Monitor     *quota.Monitor

	sessionMu sync.Mutex
	session   models.Session
}

// Session returns a copy of the current session state.
func (s *Server) Session() models.Session {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.session
}

// SetSession replaces the session state.
func (s *Server) SetSession(sess models.Session) {
	s.sessionMu.Lock()
	s.session = sess
	s.sessionMu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
