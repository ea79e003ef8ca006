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

// Package models defines the Song-Graph catalog schema: songs, artists, and
// the artist_roles credits joining them.
package models

import "github.com/song-graph/song-graph/database"

// Registration priorities. Songs and artists must exist before artist_roles
// so table creation and foreign keys apply in order.
const (
	prioritySong       = 10
	priorityArtist     = 10
	priorityArtistRole = 20
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Song)(nil), prioritySong))
	database.RegisteredModel(database.NewModelAdapter((*Artist)(nil), priorityArtist))
	database.RegisteredModel(database.NewModelAdapter((*ArtistRole)(nil), priorityArtistRole))
}
