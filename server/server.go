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

// Package server exposes the song catalog over HTTP: song CRUD, credit
// management, artist lookups, and health reporting.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/song-graph/song-graph/repository"
	"github.com/song-graph/song-graph/utils"
	"github.com/uptrace/bun"
)

const (
	appName        = "song-graph"
	appVersion     = "0.1.0"
	appDescription = "Song metadata catalog with artist credit tracking"
)

// Server holds the repositories and the HTTP listener configuration.
type Server struct {
	songs   *repository.SongRepository
	artists *repository.ArtistRepository
	address string
	logger  *utils.Logger
}

// NewServer builds a server over the given database handle.
func NewServer(db *bun.DB, address string) *Server {
	return &Server{
		songs:   repository.NewSongRepository(db),
		artists: repository.NewArtistRepository(db),
		address: address,
		logger:  utils.NewLogger("SERVER"),
	}
}

// Run serves HTTP until the context is canceled or SIGINT/SIGTERM arrives,
// then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting server at %s", s.address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Infof("Received %s, shutting down", sig)
	case <-ctx.Done():
		s.logger.Info("Context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Graceful shutdown complete")
	return nil
}
