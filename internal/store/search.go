package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/ncharlet/bibliart/internal/logger"
	"github.com/ncharlet/bibliart/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// SearchArtists returns summary rows (no artworks, no portraits) matching
// the filter. This is the read path behind the UI's search and sort box and
// never goes through the in-memory cache.
func (s *Store) SearchArtists(ctx context.Context, filter models.ArtistFilter) ([]models.Artist, error) {
	if err := s.ready("SearchArtists"); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("store")

	query := sqlBuilder.
		Select("id", "name", "birth_year", "death_year", "birthplace", "style").
		From("artists")

	if filter.NameLike != "" {
		query = query.Where(squirrel.Like{"name": "%" + filter.NameLike + "%"})
	}
	if filter.Style != "" {
		query = query.Where(squirrel.Eq{"style": filter.Style})
	}

	switch filter.SortBy {
	case "name":
		query = query.OrderBy("name COLLATE NOCASE ASC")
	case "birth_year":
		query = query.OrderBy("birth_year IS NULL, birth_year ASC")
	default:
		query = query.OrderBy("position ASC")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("search query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var a models.Artist
		var birth, death sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &birth, &death, &a.Birthplace, &a.Style); err != nil {
			return nil, err
		}
		a.BirthYear = yearOf(birth)
		a.DeathYear = yearOf(death)
		artists = append(artists, a)
	}
	log.Debug("search matched %d artists", len(artists))
	return artists, rows.Err()
}
