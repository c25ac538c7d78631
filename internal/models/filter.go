package models

// ArtistFilter narrows and orders a stored-artist search. Zero values mean
// "no constraint"; SortBy defaults to persisted order.
type ArtistFilter struct {
	NameLike string
	Style    string
	SortBy   string // "name", "birth_year" or "" for persisted order
}
