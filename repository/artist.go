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
	"strings"

	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
	"github.com/uptrace/bun"
)

// ArtistRepository layers artist lookups and credit management on top of the
// generic repository.
type ArtistRepository struct {
	Repository[models.Artist]
	db *bun.DB
}

// NewArtistRepository creates an artist repository backed by db.
func NewArtistRepository(db *bun.DB) *ArtistRepository {
	return &ArtistRepository{
		Repository: NewRepository[models.Artist](db),
		db:         db,
	}
}

// GetByID fetches an artist by primary key, (nil, nil) when absent.
func (r *ArtistRepository) GetByID(ctx context.Context, id int64) (*models.Artist, error) {
	artist, err := r.GetOne(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return artist, nil
}

// Insert validates and stores one or more artists.
func (r *ArtistRepository) Insert(ctx context.Context, artists ...*models.Artist) error {
	if len(artists) == 0 {
		return nil
	}
	for _, artist := range artists {
		if err := artist.Validate(); err != nil {
			return err
		}
	}
	return r.Create(ctx, artists...)
}

// SearchByName pages artists whose name contains q, case-insensitively.
func (r *ArtistRepository) SearchByName(ctx context.Context, q string, page, pageSize int) (*types.Pagination[models.Artist], error) {
	filter := types.NewQueryFilter(`lower(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	return r.Page(ctx, types.NewPageRequest(page, pageSize, filter, []string{"id ASC"}))
}

// FindBySpotifyID fetches an artist by Spotify identifier, (nil, nil) when
// absent.
func (r *ArtistRepository) FindBySpotifyID(ctx context.Context, spotifyID string) (*models.Artist, error) {
	artist := new(models.Artist)
	err := r.db.NewSelect().
		Model(artist).
		Where("spotify_id = ?", spotifyID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return artist, nil
}

// UpsertBySpotifyID inserts the artist or refreshes its mutable fields when
// a row with the same spotify_id already exists. Artists without a Spotify
// identifier fall back to a plain insert.
func (r *ArtistRepository) UpsertBySpotifyID(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return err
	}
	if artist.SpotifyID == "" {
		return r.Create(ctx, artist)
	}
	return r.Upsert(ctx,
		[]string{"name", "aliases", "country", "formed_year", "updated_at"},
		[]string{"spotify_id"},
		artist)
}

// DeleteByID removes an artist and its credit rows in one transaction,
// reporting whether an artist was actually deleted.
func (r *ArtistRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.ArtistRole)(nil)).
			Where("artist_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Artist)(nil)).
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

// AttachCredit links an artist to a song under the given role. The unique
// index on (song_id, artist_id, role) rejects duplicate credits; callers
// can classify that failure with database.IsDuplicateKey.
func (r *ArtistRepository) AttachCredit(ctx context.Context, credit *models.ArtistRole) error {
	if err := credit.Validate(); err != nil {
		return err
	}
	_, err := r.db.NewInsert().Model(credit).Exec(ctx)
	return err
}

// DetachCredit removes one credit row, reporting whether it existed.
func (r *ArtistRepository) DetachCredit(ctx context.Context, songID, artistID int64, role types.Role) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*models.ArtistRole)(nil)).
		Where("song_id = ?", songID).
		Where("artist_id = ?", artistID).
		Where("role = ?", role).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListCredits returns the credit rows for a song with their artists loaded.
func (r *ArtistRepository) ListCredits(ctx context.Context, songID int64) ([]*models.ArtistRole, error) {
	var credits []*models.ArtistRole
	err := r.db.NewSelect().
		Model(&credits).
		Relation("Artist").
		Where("ar.song_id = ?", songID).
		Order("ar.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// CreditsForArtist returns the credit rows of one artist with their songs
// loaded, optionally restricted to one role.
func (r *ArtistRepository) CreditsForArtist(ctx context.Context, artistID int64, role *types.Role) ([]*models.ArtistRole, error) {
	var credits []*models.ArtistRole
	query := r.db.NewSelect().
		Model(&credits).
		Relation("Song").
		Where("ar.artist_id = ?", artistID)
	if role != nil {
		query = query.Where("ar.role = ?", *role)
	}
	err := query.Order("ar.id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return credits, nil
}
