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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/song-graph/song-graph/database"
	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/repository"
	"github.com/song-graph/song-graph/types"
)

type appInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

func (s *Server) appInfoHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, appInfo{
		Name:        appName,
		Version:     appVersion,
		Description: appDescription,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := database.GetHealthStatus(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, status)
}

// listSongsHandler supports three query shapes: ?ids=1,2,3 for batch fetch,
// ?q= for title search, and plain pagination with ?page= and ?page_size=.
func (s *Server) listSongsHandler(w http.ResponseWriter, r *http.Request) {
	if rawIDs := r.URL.Query().Get("ids"); rawIDs != "" {
		ids, err := parseIDList(rawIDs)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		songs, err := s.songs.GetByIDList(r.Context(), ids)
		if err != nil {
			s.internalError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, songs)
		return
	}

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
	var result *types.Pagination[models.Song]
	if q := r.URL.Query().Get("q"); q != "" {
		result, err = s.songs.SearchByTitle(r.Context(), q, page, pageSize)
	} else {
		result, err = s.songs.Page(r.Context(), types.NewPageRequestWithOrders(page, pageSize, []string{"id ASC"}))
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) createSongHandler(w http.ResponseWriter, r *http.Request) {
	var song models.Song
	if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	song.ID = 0

	if err := song.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := s.songs.Insert(r.Context(), &song); err != nil {
		if database.IsDuplicateKey(err) {
			s.writeError(w, http.StatusConflict, "Song already exists")
			return
		}
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, &song)
}

func (s *Server) getSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	var song *models.Song
	if r.URL.Query().Get("include") == "credits" {
		song, err = s.songs.GetByIDWithCredits(r.Context(), id)
	} else {
		song, err = s.songs.GetByID(r.Context(), id)
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	if song == nil {
		s.writeError(w, http.StatusNotFound, "Song with ID %d not found", id)
		return
	}
	s.writeJSON(w, http.StatusOK, song)
}

func (s *Server) patchSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	song, err := s.songs.Patch(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownColumn) {
			s.writeError(w, http.StatusBadRequest, "%v", err)
			return
		}
		s.internalError(w, err)
		return
	}
	if song == nil {
		s.writeError(w, http.StatusNotFound, "Song with ID %d not found", id)
		return
	}
	s.writeJSON(w, http.StatusOK, song)
}

func (s *Server) deleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	deleted, err := s.songs.DeleteByID(r.Context(), id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "Song with ID %d not found", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("'ids' must be a comma-separated list of positive integers, got %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
