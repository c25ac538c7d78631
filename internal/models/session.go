package models

// Session is the caller-owned selection state. The core never keeps a
// global "current artist"; the UI layer holds a Session and passes it to
// operations that may invalidate the selection.
type Session struct {
	SelectedArtistID ID `json:"selectedArtistId"`
}

// Remap follows the repair report's id mapping. A selection that no longer
// exists is cleared.
func (s *Session) Remap(idMap map[ID]ID) {
	if s == nil || s.SelectedArtistID == 0 {
		return
	}
	if next, ok := idMap[s.SelectedArtistID]; ok {
		s.SelectedArtistID = next
		return
	}
	s.SelectedArtistID = 0
}
