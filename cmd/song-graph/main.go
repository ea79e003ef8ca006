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

package main

import (
	"context"
	"flag"
	"os"

	"github.com/song-graph/song-graph/database"
	_ "github.com/song-graph/song-graph/models"
	"github.com/song-graph/song-graph/server"
	"github.com/song-graph/song-graph/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := utils.NewLogger("MAIN")
	database.LoadDotEnv()

	var cfg *database.Config
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = database.LoadConfigFile(*configPath)
		if err != nil {
			logger.Fatalf("failed to load config %s: %v", *configPath, err)
		}
	} else {
		logger.Infof("Config file %s not found, using environment configuration", *configPath)
		cfg = database.ConfigFromEnv()
	}

	ctx := context.Background()
	if err := database.InitDB(ctx, cfg); err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Errorf("failed to close database: %v", err)
		}
	}()

	address := utils.EnvDefaultString("SERVER_ADDRESS", ":8080")
	srv := server.NewServer(database.GetDB(), address)
	if err := srv.Run(ctx); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
