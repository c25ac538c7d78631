package api

import (
	"net/http"

	"github.com/ncharlet/bibliart/internal/models"
)

// handleRepair runs the repair pass and remaps the session selection
// through the report's id table.
func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	sess := s.Session()
	report, err := s.Maintenance.Repair(r.Context(), &sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.SetSession(sess)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRecompress(w http.ResponseWriter, r *http.Request) {
	aggressive := r.URL.Query().Get("aggressive") == "true"
	if err := s.Maintenance.EnqueueRecompress(r.Context(), aggressive); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "aggressive": aggressive})
}

func (s *Server) handleRecompressStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.Maintenance.LastRecompress()
	body := map[string]any{"report": report}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleUsage reports the storage estimate and the latest threshold event.
// An unreportable estimate is not an error; the monitor is simply inert.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if usage, err := s.Monitor.Estimate(); err == nil {
		body["usage"] = usage
	}
	if ev := s.Monitor.LastEvent(); ev != nil {
		body["event"] = ev
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session())
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var sess models.Session
	if err := decodeJSONBody(r, &sess); err != nil {
		handleError(w, r, err)
		return
	}
	s.SetSession(sess)
	writeJSON(w, http.StatusOK, sess)
}
