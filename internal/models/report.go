package models

// RepairReport describes what a repair pass changed. ArtistIDMap maps each
// artist's previous id to its freshly assigned one; callers use it to keep
// any selection pointer valid across the pass.
type RepairReport struct {
	ArtistIDMap        map[ID]ID `json:"artistIdMap"`
	ArtistsRenumbered  int       `json:"artistsRenumbered"`
	ArtworksRenumbered int       `json:"artworksRenumbered"`
	FieldsDefaulted    int       `json:"fieldsDefaulted"`
}

// GroupedReport summarizes a grouped-card merge.
type GroupedReport struct {
	ArtistsCreated    int `json:"artistsCreated"`
	ArtworksImported  int `json:"artworksImported"`
	DuplicatesSkipped int `json:"duplicatesSkipped"`
}

// StatsReport summarizes a statistics-only merge.
type StatsReport struct {
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
}

// RecompressReport summarizes a bulk recompression batch.
type RecompressReport struct {
	Done        int   `json:"done"`
	Failed      int   `json:"failed"`
	Skipped     int   `json:"skipped"`
	BytesBefore int64 `json:"bytesBefore"`
	BytesAfter  int64 `json:"bytesAfter"`
}

// QuotaUsage is a point-in-time storage estimate. QuotaBytes zero means the
// platform could not report a limit.
type QuotaUsage struct {
	UsedBytes  int64 `json:"usedBytes"`
	QuotaBytes int64 `json:"quotaBytes"`
}

// Percent returns consumed quota as 0-100, or -1 when no limit is known.
func (u QuotaUsage) Percent() float64 {
	if u.QuotaBytes <= 0 {
		return -1
	}
	return float64(u.UsedBytes) / float64(u.QuotaBytes) * 100
}
