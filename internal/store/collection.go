package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

// LoadAll returns the full collection in persisted order. A corrupt or
// unreadable document is reported as a LoadFailed condition (visible through
// LastLoadError) and yields an empty collection; it is not raised.
func (s *Store) LoadAll(ctx context.Context) ([]models.Artist, error) {
	if err := s.ready("LoadAll"); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("store")

	artists, err := s.loadArtists(ctx)
	if err != nil {
		log.Error("load failed, returning empty collection: %v", err)
		s.setLoadErr(errors.NewLoadFailedError(err))
		return []models.Artist{}, nil
	}
	s.setLoadErr(nil)
	log.Debug("loaded %d artists", len(artists))
	return artists, nil
}

func (s *Store) loadArtists(ctx context.Context) ([]models.Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, birth_year, death_year, birthplace, style, bio, portrait
FROM artists
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artists := []models.Artist{}
	for rows.Next() {
		var a models.Artist
		var birth, death sql.NullInt64
		var portrait string
		if err := rows.Scan(&a.ID, &a.Name, &birth, &death, &a.Birthplace, &a.Style, &a.Bio, &portrait); err != nil {
			return nil, err
		}
		a.BirthYear = yearOf(birth)
		a.DeathYear = yearOf(death)
		a.Portrait = models.Payload(portrait)
		a.Artworks = []models.Artwork{}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byArtist, err := s.loadArtworks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range artists {
		if aws, ok := byArtist[artists[i].ID]; ok {
			artists[i].Artworks = aws
		}
	}
	return artists, nil
}

func (s *Store) loadArtworks(ctx context.Context) (map[models.ID][]models.Artwork, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.artist_id, a.id, a.title, a.date, a.technique, a.image, a.analysis,
       st.played, st.correct, st.wrong, st.artist_correct, st.title_correct, st.date_correct, st.success_rate
FROM artworks a
LEFT JOIN artwork_stats st ON st.artist_id = a.artist_id AND st.artwork_id = a.id
ORDER BY a.artist_id, a.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.ID][]models.Artwork{}
	for rows.Next() {
		var artistID models.ID
		var aw models.Artwork
		var image string
		var played, correct, wrong, artistOK, titleOK, dateOK, rate sql.NullInt64
		if err := rows.Scan(&artistID, &aw.ID, &aw.Title, &aw.Date, &aw.Technique, &image, &aw.Analysis,
			&played, &correct, &wrong, &artistOK, &titleOK, &dateOK, &rate); err != nil {
			return nil, err
		}
		aw.Image = models.Payload(image)
		// A stats row either exists with every counter set, or not at all.
		if played.Valid {
			aw.Stats = &models.Statistics{
				Played:        models.Count(played.Int64),
				Correct:       models.Count(correct.Int64),
				Wrong:         models.Count(wrong.Int64),
				ArtistCorrect: models.Count(artistOK.Int64),
				TitleCorrect:  models.Count(titleOK.Int64),
				DateCorrect:   models.Count(dateOK.Int64),
				SuccessRate:   models.Count(rate.Int64),
			}
		}
		out[artistID] = append(out[artistID], aw)
	}
	return out, rows.Err()
}

// ReplaceAll atomically discards the stored collection and persists the
// given one. All-or-nothing: a failure partway through leaves the previous
// collection readable. Concurrent calls are serialized, never interleaved.
func (s *Store) ReplaceAll(ctx context.Context, artists []models.Artist) error {
	if err := s.ready("ReplaceAll"); err != nil {
		return err
	}
	log := logger.FromContext(ctx).WithPrefix("store")

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Charge the serialized document against the configured quota before
	// touching the backend at all.
	if s.quotaBytes > 0 {
		doc, err := json.Marshal(artists)
		if err != nil {
			return errors.NewWriteFailedError(err)
		}
		if int64(len(doc)) > s.quotaBytes {
			log.Warn("replace rejected: document %d bytes over quota %d", len(doc), s.quotaBytes)
			return errors.NewQuotaExceededError(int64(len(doc)))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyWriteError(err)
	}
	if err := replaceInTx(ctx, tx, artists); err != nil {
		_ = tx.Rollback()
		log.Error("replace rolled back: %v", err)
		return classifyWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		log.Error("replace commit failed: %v", err)
		return classifyWriteError(err)
	}

	s.reseed(artists)
	log.Debug("replaced collection: %d artists", len(artists))
	return nil
}

func replaceInTx(ctx context.Context, tx *sql.Tx, artists []models.Artist) error {
	for _, stmt := range []string{
		`DELETE FROM artwork_stats`,
		`DELETE FROM artworks`,
		`DELETE FROM artists`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for pos, a := range artists {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO artists (id, position, name, birth_year, death_year, birthplace, style, bio, portrait)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, pos, a.Name, nullYear(a.BirthYear), nullYear(a.DeathYear), a.Birthplace, a.Style, a.Bio, string(a.Portrait)); err != nil {
			return err
		}
		for awPos, aw := range a.Artworks {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO artworks (artist_id, id, position, title, date, technique, image, analysis)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, aw.ID, awPos, aw.Title, aw.Date, aw.Technique, string(aw.Image), aw.Analysis); err != nil {
				return err
			}
			if aw.Stats != nil {
				st := aw.Stats
				if _, err := tx.ExecContext(ctx, `
INSERT INTO artwork_stats (artist_id, artwork_id, played, correct, wrong, artist_correct, title_correct, date_correct, success_rate)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					a.ID, aw.ID, st.Played, st.Correct, st.Wrong, st.ArtistCorrect, st.TitleCorrect, st.DateCorrect, st.SuccessRate); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// reseed raises the id counter to the collection's high watermark. It never
// lowers it: ids already handed out to callers must stay unique even when
// the stored collection shrinks.
func (s *Store) reseed(artists []models.Artist) {
	var max int64
	for _, a := range artists {
		if int64(a.ID) > max {
			max = int64(a.ID)
		}
		for _, aw := range a.Artworks {
			if int64(aw.ID) > max {
				max = int64(aw.ID)
			}
		}
	}
	for {
		cur := s.nextID.Load()
		if max <= cur || s.nextID.CompareAndSwap(cur, max) {
			return
		}
	}
}

func classifyWriteError(err error) error {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
		return errors.NewQuotaExceededError(0)
	}
	if strings.Contains(err.Error(), "database or disk is full") {
		return errors.NewQuotaExceededError(0)
	}
	return errors.NewWriteFailedError(err)
}

func yearOf(n sql.NullInt64) models.Year {
	if !n.Valid {
		return models.Year{}
	}
	return models.NewYear(int(n.Int64))
}

func nullYear(y models.Year) sql.NullInt64 {
	if !y.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(y.Int), Valid: true}
}
