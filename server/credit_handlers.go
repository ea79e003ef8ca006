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

	"github.com/go-chi/chi/v5"
	"github.com/song-graph/song-graph/database"
	"github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/types"
)

func (s *Server) listCreditsHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	song, err := s.songs.GetByID(r.Context(), songID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if song == nil {
		s.writeError(w, http.StatusNotFound, "Song with ID %d not found", songID)
		return
	}

	credits, err := s.artists.ListCredits(r.Context(), songID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, credits)
}

type attachCreditRequest struct {
	ArtistID   int64  `json:"artist_id"`
	Role       string `json:"role"`
	CreditedAs string `json:"credited_as,omitempty"`
}

func (s *Server) attachCreditHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	var req attachCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	role, ok := types.ParseRole(req.Role)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Unknown role %q", req.Role)
		return
	}

	song, err := s.songs.GetByID(r.Context(), songID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if song == nil {
		s.writeError(w, http.StatusNotFound, "Song with ID %d not found", songID)
		return
	}
	artist, err := s.artists.GetByID(r.Context(), req.ArtistID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if artist == nil {
		s.writeError(w, http.StatusNotFound, "Artist with ID %d not found", req.ArtistID)
		return
	}

	credit := &models.ArtistRole{
		SongID:     songID,
		ArtistID:   req.ArtistID,
		Role:       role,
		CreditedAs: req.CreditedAs,
	}
	if err := s.artists.AttachCredit(r.Context(), credit); err != nil {
		if database.IsDuplicateKey(err) {
			s.writeError(w, http.StatusConflict,
				"Artist %d is already credited as %s on song %d", req.ArtistID, role, songID)
			return
		}
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, credit)
}

func (s *Server) detachCreditHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	artistID, err := parseID(r, "artistID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	role, ok := types.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Unknown role %q", chi.URLParam(r, "role"))
		return
	}

	removed, err := s.artists.DetachCredit(r.Context(), songID, artistID, role)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound,
			"No %s credit for artist %d on song %d", role, artistID, songID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
