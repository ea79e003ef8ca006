/*
 * Copyright 2025 the Song-Graph Authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
	"github.com/uptrace/bun"
)

// ErrUnknownColumn reports a Patch field that is not an updatable song
// column. Callers match it with errors.Is.
var ErrUnknownColumn = errors.New("unknown song column")

// songPatchColumns lists the columns Patch accepts. Keys outside this set
// are rejected before they reach the query builder.
var songPatchColumns = map[string]bool{
	"title":          true,
	"duration_ms":    true,
	"release_date":   true,
	"album_name":     true,
	"isrc":           true,
	"spotify_id":     true,
	"deezer_id":      true,
	"apple_music_id": true,
	"genre":          true,
	"bpm":            true,
	"key":            true,
	"energy":         true,
	"danceability":   true,
}

// SongRepository layers song-specific lookups and credit-aware deletion on
// top of the generic repository.
type SongRepository struct {
	Repository[models.Song]
	db *bun.DB
}

// NewSongRepository creates a song repository backed by db.
func NewSongRepository(db *bun.DB) *SongRepository {
	return &SongRepository{
		Repository: NewRepository[models.Song](db),
		db:         db,
	}
}

// GetByID fetches a song by primary key. A missing song returns (nil, nil)
// so callers can distinguish absence from failure.
func (r *SongRepository) GetByID(ctx context.Context, id int64) (*models.Song, error) {
	song, err := r.GetOne(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// GetByIDWithCredits fetches a song with its credit rows and their artists.
// A missing song returns (nil, nil).
func (r *SongRepository) GetByIDWithCredits(ctx context.Context, id int64) (*models.Song, error) {
	song := new(models.Song)
	err := r.db.NewSelect().
		Model(song).
		Relation("Credits").
		Relation("Credits.Artist").
		Where("s.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// GetByIDList fetches the songs whose IDs are in ids. An empty input returns
// an empty slice without touching the database. Missing IDs are simply
// absent from the result.
func (r *SongRepository) GetByIDList(ctx context.Context, ids []int64) ([]*models.Song, error) {
	if len(ids) == 0 {
		return []*models.Song{}, nil
	}
	songs, err := r.Query(ctx, "id IN (?)", bun.In(ids))
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []*models.Song{}
	}
	return songs, nil
}

// Insert validates and stores one or more songs. IDs are filled in on the
// passed models.
func (r *SongRepository) Insert(ctx context.Context, songs ...*models.Song) error {
	if len(songs) == 0 {
		return nil
	}
	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return err
		}
	}
	return r.Create(ctx, songs...)
}

// Patch applies a partial update. Nil values in fields are skipped, matching
// PATCH semantics where an omitted field means "leave unchanged". An empty
// effective update degrades to a plain fetch. A missing song returns
// (nil, nil).
func (r *SongRepository) Patch(ctx context.Context, id int64, fields map[string]any) (*models.Song, error) {
	update := r.db.NewUpdate().
		Model((*models.Song)(nil)).
		Where("id = ?", id)

	assigned := 0
	for column, value := range fields {
		if value == nil {
			continue
		}
		if !songPatchColumns[column] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
		}
		update = update.Set("? = ?", bun.Ident(column), value)
		assigned++
	}
	if assigned == 0 {
		return r.GetByID(ctx, id)
	}
	update = update.Set("updated_at = ?", time.Now())

	res, err := update.Exec(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// DeleteByID removes a song and its credit rows in one transaction. It
// reports whether a song was actually deleted. The credit cleanup keeps
// SQLite consistent where the cascade constraints cannot be installed.
func (r *SongRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.ArtistRole)(nil)).
			Where("song_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Song)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally. The
// resulting pattern must be paired with an ESCAPE '\' clause.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchByTitle pages songs whose titles contain q, case-insensitively.
func (r *SongRepository) SearchByTitle(ctx context.Context, q string, page, pageSize int) (*types.Pagination[models.Song], error) {
	filter := types.NewQueryFilter(`lower(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	return r.Page(ctx, types.NewPageRequest(page, pageSize, filter, []string{"id ASC"}))
}

// ByArtist lists the songs credited to an artist, optionally restricted to
// one role.
func (r *SongRepository) ByArtist(ctx context.Context, artistID int64, role *types.Role) ([]*models.Song, error) {
	var songs []*models.Song
	query := r.db.NewSelect().
		Model(&songs).
		Join("JOIN artist_roles AS ar ON ar.song_id = s.id").
		Where("ar.artist_id = ?", artistID)
	if role != nil {
		query = query.Where("ar.role = ?", *role)
	}
	err := query.
		Distinct().
		Order("s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return songs, nil
}

// FindBySpotifyID fetches a song by its Spotify identifier, (nil, nil) when
// absent.
func (r *SongRepository) FindBySpotifyID(ctx context.Context, spotifyID string) (*models.Song, error) {
	song := new(models.Song)
	err := r.db.NewSelect().
		Model(song).
		Where("spotify_id = ?", spotifyID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}
