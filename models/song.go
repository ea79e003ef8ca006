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

package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/song-graph/song-graph/types"
)

// Song is a single recording in the catalog. Industry identifiers are
// optional; genre is a JSON-encoded string list so the column works on
// Postgres, MySQL, and SQLite alike.
type Song struct {
	bun.BaseModel `bun:"table:songs,alias:s"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`

	Title       string     `bun:"title,notnull" json:"title"`
	DurationMS  int        `bun:"duration_ms,notnull" json:"duration_ms"`
	ReleaseDate *time.Time `bun:"release_date,nullzero" json:"release_date,omitempty"`
	AlbumName   string     `bun:"album_name,nullzero" json:"album_name,omitempty"`

	// Industry identifiers.
	ISRC         string `bun:"isrc,nullzero,unique" json:"isrc,omitempty"`
	SpotifyID    string `bun:"spotify_id,nullzero,unique" json:"spotify_id,omitempty"`
	DeezerID     string `bun:"deezer_id,nullzero" json:"deezer_id,omitempty"`
	AppleMusicID string `bun:"apple_music_id,nullzero" json:"apple_music_id,omitempty"`

	// Musical features.
	Genres types.StringList `bun:"genre,type:text,nullzero" json:"genre,omitempty"`
	BPM    *int             `bun:"bpm,nullzero" json:"bpm,omitempty"`
	Key    string           `bun:"key,nullzero" json:"key,omitempty"`

	// Audio features, normalized to [0, 1].
	Energy       *float64 `bun:"energy,nullzero" json:"energy,omitempty"`
	Danceability *float64 `bun:"danceability,nullzero" json:"danceability,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Credits []*ArtistRole `bun:"rel:has-many,join:id=song_id" json:"credits,omitempty"`
}

func (s *Song) String() string {
	return fmt.Sprintf("Song(id=%d, title=%q)", s.ID, s.Title)
}

// Validate enforces the model-level constraints the schema also carries as
// CHECKs: positive duration and unit-interval audio features.
func (s *Song) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.DurationMS <= 0 {
		return fmt.Errorf("song duration_ms must be positive, got %d", s.DurationMS)
	}
	if s.Energy != nil && (*s.Energy < 0 || *s.Energy > 1) {
		return fmt.Errorf("song energy must be within [0, 1], got %v", *s.Energy)
	}
	if s.Danceability != nil && (*s.Danceability < 0 || *s.Danceability > 1) {
		return fmt.Errorf("song danceability must be within [0, 1], got %v", *s.Danceability)
	}
	return nil
}
