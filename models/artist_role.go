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

// ArtistRole links an artist to a song under a specific credit. An artist
// may hold several distinct roles on the same song, but each (song, artist,
// role) triple is unique.
type ArtistRole struct {
	bun.BaseModel `bun:"table:artist_roles,alias:ar"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`

	SongID   int64      `bun:"song_id,notnull,unique:uq_artist_roles_song_artist_role" json:"song_id"`
	ArtistID int64      `bun:"artist_id,notnull,unique:uq_artist_roles_song_artist_role" json:"artist_id"`
	Role     types.Role `bun:"role,notnull,type:varchar(20),unique:uq_artist_roles_song_artist_role" json:"role"`

	// CreditedAs is the billing name on the record when it differs from the
	// artist's canonical name.
	CreditedAs string `bun:"credited_as,nullzero" json:"credited_as,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Song   *Song   `bun:"rel:belongs-to,join:song_id=id" json:"song,omitempty"`
	Artist *Artist `bun:"rel:belongs-to,join:artist_id=id" json:"artist,omitempty"`
}

func (r *ArtistRole) String() string {
	return fmt.Sprintf("ArtistRole(song=%d, artist=%d, role=%s)", r.SongID, r.ArtistID, r.Role)
}

// Validate checks the credit before persisting it.
func (r *ArtistRole) Validate() error {
	if r.SongID <= 0 {
		return fmt.Errorf("credit song_id is required")
	}
	if r.ArtistID <= 0 {
		return fmt.Errorf("credit artist_id is required")
	}
	if !r.Role.IsValid() {
		return fmt.Errorf("credit role is invalid: %d", r.Role.Number())
	}
	return nil
}
