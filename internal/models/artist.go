package models

// Artist is one catalog entry. Artworks are owned, never shared, and their
// order is the display order.
type Artist struct {
	ID         ID        `json:"id"`
	Name       string    `json:"name"`
	BirthYear  Year      `json:"birthYear"`
	DeathYear  Year      `json:"deathYear"`
	Birthplace string    `json:"birthplace"`
	Style      string    `json:"style"`
	Bio        string    `json:"bio"`
	Portrait   Payload   `json:"portrait"`
	Artworks   []Artwork `json:"artworks"`
}

// Artwork is a single work inside an Artist. IDs are unique per owning
// artist only.
type Artwork struct {
	ID        ID          `json:"id"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`
	Technique string      `json:"technique"`
	Image     Payload     `json:"image"`
	Analysis  string      `json:"analysis"`
	Stats     *Statistics `json:"stats,omitempty"`
}

// Statistics are quiz counters for one artwork. A nil Statistics on an
// Artwork means "never played"; a present record always has every counter
// defined.
type Statistics struct {
	Played        Count `json:"played"`
	Correct       Count `json:"correct"`
	Wrong         Count `json:"wrong"`
	ArtistCorrect Count `json:"artistCorrect"`
	TitleCorrect  Count `json:"titleCorrect"`
	DateCorrect   Count `json:"dateCorrect"`
	SuccessRate   Count `json:"successRate"`
}

// Clone returns a deep copy of the artist.
func (a Artist) Clone() Artist {
	out := a
	out.Artworks = make([]Artwork, len(a.Artworks))
	for i, aw := range a.Artworks {
		out.Artworks[i] = aw.Clone()
	}
	return out
}

// Clone returns a deep copy of the artwork.
func (aw Artwork) Clone() Artwork {
	out := aw
	if aw.Stats != nil {
		stats := *aw.Stats
		out.Stats = &stats
	}
	return out
}

// CloneCollection deep-copies a whole collection. The in-memory collection
// is a cache of the durable copy; clones keep callers from mutating it
// behind the services' back.
func CloneCollection(artists []Artist) []Artist {
	out := make([]Artist, len(artists))
	for i, a := range artists {
		out[i] = a.Clone()
	}
	return out
}

// PayloadBytes sums the transport size of every image payload in the
// collection. Used for recompression reporting and quota estimates.
func PayloadBytes(artists []Artist) int64 {
	var total int64
	for _, a := range artists {
		total += int64(a.Portrait.Len())
		for _, aw := range a.Artworks {
			total += int64(aw.Image.Len())
		}
	}
	return total
}
