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

// Artist is a person or group credited on songs.
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`

	Name       string           `bun:"name,notnull" json:"name"`
	Aliases    types.StringList `bun:"aliases,type:text,nullzero" json:"aliases,omitempty"`
	Country    string           `bun:"country,nullzero" json:"country,omitempty"` // ISO 3166-1 alpha-2
	SpotifyID  string           `bun:"spotify_id,nullzero,unique" json:"spotify_id,omitempty"`
	FormedYear *int             `bun:"formed_year,nullzero" json:"formed_year,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Credits []*ArtistRole `bun:"rel:has-many,join:id=artist_id" json:"credits,omitempty"`
}

func (a *Artist) String() string {
	return fmt.Sprintf("Artist(id=%d, name=%q)", a.ID, a.Name)
}

// Validate checks the fields required before persisting an artist.
func (a *Artist) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("artist name is required")
	}
	if a.Country != "" && len(a.Country) != 2 {
		return fmt.Errorf("artist country must be a two-letter code, got %q", a.Country)
	}
	return nil
}
