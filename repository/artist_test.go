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

	"github.com/song-graph/song-graph/database"
	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistGetByIDMissing(t *testing.T) {
	repo := NewArtistRepository(newTestDB(t))

	artist, err := repo.GetByID(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, artist)
}

func TestArtistInsertValidation(t *testing.T) {
	repo := NewArtistRepository(newTestDB(t))
	ctx := context.Background()

	err := repo.Insert(ctx, &models.Artist{Name: ""})
	assert.ErrorContains(t, err, "name is required")

	err = repo.Insert(ctx, &models.Artist{Name: "Bad Country", Country: "USA"})
	assert.ErrorContains(t, err, "country")
}

func TestArtistSearchByName(t *testing.T) {
	repo := NewArtistRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx,
		newTestArtist("The Midnight"),
		newTestArtist("Midnight Oil"),
		newTestArtist("Daft Punk")))

	page, err := repo.SearchByName(ctx, "midnight", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestArtistSearchByNameLiteralWildcards(t *testing.T) {
	repo := NewArtistRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx,
		newTestArtist("AC_DC"),
		newTestArtist("ACXDC")))

	page, err := repo.SearchByName(ctx, "ac_dc", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "AC_DC", page.Items[0].Name)
}

func TestArtistUpsertBySpotifyID(t *testing.T) {
	repo := NewArtistRepository(newTestDB(t))
	ctx := context.Background()

	artist := newTestArtist("Original Name")
	artist.SpotifyID = "0OdUWJ0sBjDrqHygGUXeCF"
	require.NoError(t, repo.UpsertBySpotifyID(ctx, artist))

	renamed := newTestArtist("Corrected Name")
	renamed.SpotifyID = "0OdUWJ0sBjDrqHygGUXeCF"
	require.NoError(t, repo.UpsertBySpotifyID(ctx, renamed))

	got, err := repo.FindBySpotifyID(ctx, "0OdUWJ0sBjDrqHygGUXeCF")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Corrected Name", got.Name)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAttachCreditDuplicate(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	song := newTestSong("Credited")
	require.NoError(t, songs.Insert(ctx, song))
	artist := newTestArtist("Producer Person")
	require.NoError(t, artists.Insert(ctx, artist))

	credit := &models.ArtistRole{SongID: song.ID, ArtistID: artist.ID, Role: types.RoleProducer}
	require.NoError(t, artists.AttachCredit(ctx, credit))

	dup := &models.ArtistRole{SongID: song.ID, ArtistID: artist.ID, Role: types.RoleProducer}
	err := artists.AttachCredit(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	// Same artist under a different role is a new credit, not a duplicate.
	other := &models.ArtistRole{SongID: song.ID, ArtistID: artist.ID, Role: types.RoleComposer}
	require.NoError(t, artists.AttachCredit(ctx, other))
}

func TestDetachCredit(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	song := newTestSong("Detachable")
	require.NoError(t, songs.Insert(ctx, song))
	artist := newTestArtist("Featured Friend")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: song.ID, ArtistID: artist.ID, Role: types.RoleFeatured,
	}))

	removed, err := artists.DetachCredit(ctx, song.ID, artist.ID, types.RoleFeatured)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = artists.DetachCredit(ctx, song.ID, artist.ID, types.RoleFeatured)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListCreditsLoadsArtists(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	song := newTestSong("Collaboration")
	require.NoError(t, songs.Insert(ctx, song))
	artist := newTestArtist("Billed Differently")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID:     song.ID,
		ArtistID:   artist.ID,
		Role:       types.RoleLyricist,
		CreditedAs: "B. Different",
	}))

	credits, err := artists.ListCredits(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, types.RoleLyricist, credits[0].Role)
	assert.Equal(t, "B. Different", credits[0].CreditedAs)
	require.NotNil(t, credits[0].Artist)
	assert.Equal(t, "Billed Differently", credits[0].Artist.Name)
}

func TestArtistDeleteRemovesCredits(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	song := newTestSong("Orphaned")
	require.NoError(t, songs.Insert(ctx, song))
	artist := newTestArtist("Leaving Artist")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: song.ID, ArtistID: artist.ID, Role: types.RolePerformer,
	}))

	deleted, err := artists.DeleteByID(ctx, artist.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	credits, err := artists.ListCredits(ctx, song.ID)
	require.NoError(t, err)
	assert.Empty(t, credits)

	// The song itself survives.
	got, err := songs.GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCreditsForArtistRoleFilter(t *testing.T) {
	db := newTestDB(t)
	songs := NewSongRepository(db)
	artists := NewArtistRepository(db)
	ctx := context.Background()

	first := newTestSong("First Cut")
	second := newTestSong("Second Cut")
	require.NoError(t, songs.Insert(ctx, first, second))
	artist := newTestArtist("Busy Artist")
	require.NoError(t, artists.Insert(ctx, artist))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: first.ID, ArtistID: artist.ID, Role: types.RolePerformer,
	}))
	require.NoError(t, artists.AttachCredit(ctx, &models.ArtistRole{
		SongID: second.ID, ArtistID: artist.ID, Role: types.RoleProducer,
	}))

	producer := types.RoleProducer
	credits, err := artists.CreditsForArtist(ctx, artist.ID, &producer)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	require.NotNil(t, credits[0].Song)
	assert.Equal(t, "Second Cut", credits[0].Song.Title)
}
