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

package server

import (
	"encoding/json"
	"net/http"

	"github.com/song-graph/song-graph/database"
	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
)

func (s *Server) listArtistsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePositiveInt(r, "page", 1)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	pageSize, err := parsePositiveInt(r, "page_size", 10)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	var result *types.Pagination[models.Artist]
	if q := r.URL.Query().Get("q"); q != "" {
		result, err = s.artists.SearchByName(r.Context(), q, page, pageSize)
	} else {
		result, err = s.artists.Page(r.Context(), types.NewPageRequestWithOrders(page, pageSize, []string{"id ASC"}))
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) createArtistHandler(w http.ResponseWriter, r *http.Request) {
	var artist models.Artist
	if err := json.NewDecoder(r.Body).Decode(&artist); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	artist.ID = 0

	if err := artist.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := s.artists.Insert(r.Context(), &artist); err != nil {
		if database.IsDuplicateKey(err) {
			s.writeError(w, http.StatusConflict, "Artist already exists")
			return
		}
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, &artist)
}

func (s *Server) getArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	artist, err := s.artists.GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if artist == nil {
		s.writeError(w, http.StatusNotFound, "Artist with ID %d not found", id)
		return
	}
	s.writeJSON(w, http.StatusOK, artist)
}

func (s *Server) deleteArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	deleted, err := s.artists.DeleteByID(r.Context(), id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "Artist with ID %d not found", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// artistSongsHandler lists the songs an artist is credited on, optionally
// restricted with ?role=composer and similar.
func (s *Server) artistSongsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	var role *types.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, ok := types.ParseRole(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "Unknown role %q", raw)
			return
		}
		role = &parsed
	}

	artist, err := s.artists.GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if artist == nil {
		s.writeError(w, http.StatusNotFound, "Artist with ID %d not found", id)
		return
	}

	songs, err := s.songs.ByArtist(r.Context(), id, role)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, songs)
}
