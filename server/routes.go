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
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the router. Kept separate from Run so tests can mount the
// handler directly.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)

	r.Get("/", s.appInfoHandler)
	r.Get("/healthz", s.healthHandler)

	r.Route("/songs", func(r chi.Router) {
		r.Get("/", s.listSongsHandler)
		r.Post("/", s.createSongHandler)
		r.Get("/{id}", s.getSongHandler)
		r.Patch("/{id}", s.patchSongHandler)
		r.Delete("/{id}", s.deleteSongHandler)

		r.Get("/{id}/credits", s.listCreditsHandler)
		r.Post("/{id}/credits", s.attachCreditHandler)
		r.Delete("/{id}/credits/{artistID}/{role}", s.detachCreditHandler)
	})

	r.Route("/artists", func(r chi.Router) {
		r.Get("/", s.listArtistsHandler)
		r.Post("/", s.createArtistHandler)
		r.Get("/{id}", s.getArtistHandler)
		r.Delete("/{id}", s.deleteArtistHandler)
		r.Get("/{id}/songs", s.artistSongsHandler)
	})

	return r
}
