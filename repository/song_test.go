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
	"testing"

	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongGetByIDMissing(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))

	song, err := repo.GetByID(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, song)
}

func TestSongInsertAndGetByID(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	bpm := 120
	energy := 0.82
	song := newTestSong("Night Drive")
	song.BPM = &bpm
	song.Energy = &energy
	song.Genres = types.StringList{"synthwave", "electronic"}

	require.NoError(t, repo.Insert(ctx, song))
	require.NotZero(t, song.ID)

	got, err := repo.GetByID(ctx, song.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Night Drive", got.Title)
	assert.Equal(t, 215000, got.DurationMS)
	require.NotNil(t, got.BPM)
	assert.Equal(t, 120, *got.BPM)
	assert.True(t, got.Genres.Contains("synthwave"))
}

func TestSongInsertValidation(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.Insert(ctx, &models.Song{Title: "", DurationMS: 1000})
	assert.ErrorContains(t, err, "title is required")

	err = repo.Insert(ctx, &models.Song{Title: "Broken", DurationMS: 0})
	assert.ErrorContains(t, err, "duration_ms must be positive")

	bad := 1.5
	err = repo.Insert(ctx, &models.Song{Title: "Broken", DurationMS: 1000, Energy: &bad})
	assert.ErrorContains(t, err, "energy must be within")
}

func TestSongGetByIDList(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	first := newTestSong("First")
	second := newTestSong("Second")
	require.NoError(t, repo.Insert(ctx, first, second))

	songs, err := repo.GetByIDList(ctx, []int64{})
	require.NoError(t, err)
	assert.Empty(t, songs)

	songs, err = repo.GetByIDList(ctx, []int64{first.ID, second.ID, 999999})
	require.NoError(t, err)
	assert.Len(t, songs, 2)
}

func TestSongPatch(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	song := newTestSong("Original Title")
	require.NoError(t, repo.Insert(ctx, song))

	updated, err := repo.Patch(ctx, song.ID, map[string]any{
		"title":       "Patched Title",
		"album_name":  nil, // nil means leave unchanged
		"duration_ms": 180000,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Patched Title", updated.Title)
	assert.Equal(t, 180000, updated.DurationMS)
	assert.Equal(t, "Test Album", updated.AlbumName)
}

func TestSongPatchAllNilFieldsReturnsFetch(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	song := newTestSong("Untouched")
	require.NoError(t, repo.Insert(ctx, song))

	got, err := repo.Patch(ctx, song.ID, map[string]any{"title": nil})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Untouched", got.Title)
}

func TestSongPatchMissing(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))

	got, err := repo.Patch(context.Background(), 424242, map[string]any{"title": "Ghost"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSongPatchUnknownColumn(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	song := newTestSong("Guarded")
	require.NoError(t, repo.Insert(ctx, song))

	_, err := repo.Patch(ctx, song.ID, map[string]any{"lyrics": "not a column"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.ErrorContains(t, err, "lyrics")
}

func TestSongDeleteByID(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	song := newTestSong("Doomed")
	require.NoError(t, songs.Insert(ctx, song))
	artist := newTestArtist("Session Player")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID:   song.ID,
		ArtistID: artist.ID,
		Role:     types.RolePerformer,
	}))

	deleted, err := songs.DeleteByID(ctx, song.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Credits go with the song.
	credits, err := artists.ListCredits(ctx, song.ID)
	require.NoError(t, err)
	assert.Empty(t, credits)

	deleted, err = songs.DeleteByID(ctx, song.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSongSearchByTitle(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx,
		newTestSong("Midnight City"),
		newTestSong("Midnight Run"),
		newTestSong("Daylight")))

	page, err := repo.SearchByTitle(ctx, "midnight", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = repo.SearchByTitle(ctx, "midnight", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestSongSearchByTitleLiteralWildcards(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx,
		newTestSong("100% Pure"),
		newTestSong("100x Pure"),
		newTestSong("Mr_Smith"),
		newTestSong("MrXSmith")))

	// "%" and "_" in the query match themselves, not any character.
	page, err := repo.SearchByTitle(ctx, "100%", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "100% Pure", page.Items[0].Title)

	page, err = repo.SearchByTitle(ctx, "mr_", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Mr_Smith", page.Items[0].Title)
}

func TestSongsByArtist(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	performed := newTestSong("Performed")
	written := newTestSong("Written")
	unrelated := newTestSong("Unrelated")
	require.NoError(t, songs.Insert(ctx, performed, written, unrelated))

	artist := newTestArtist("Multi Talent")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: performed.ID, ArtistID: artist.ID, Role: types.RolePerformer,
	}))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: written.ID, ArtistID: artist.ID, Role: types.RoleComposer,
	}))

	all, err := songs.ByArtist(ctx, artist.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	composer := types.RoleComposer
	composed, err := songs.ByArtist(ctx, artist.ID, &composer)
	require.NoError(t, err)
	require.Len(t, composed, 1)
	assert.Equal(t, "Written", composed[0].Title)
}

func TestSongFindBySpotifyID(t *testing.T) {
	repo := NewSongRepository(newTestDB(t))
	ctx := context.Background()

	song := newTestSong("Streamable")
	song.SpotifyID = "4uLU6hMCjMI75M1A2tKUQC"
	require.NoError(t, repo.Insert(ctx, song))

	got, err := repo.FindBySpotifyID(ctx, "4uLU6hMCjMI75M1A2tKUQC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, song.ID, got.ID)

	got, err = repo.FindBySpotifyID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}
