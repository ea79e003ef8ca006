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

package database

import (
	"fmt"
	"time"

	"github.com/song-graph/song-graph/utils"
)

var supportedDatabaseTypes = map[string]bool{
	"postgres": true,
	"mysql":    true,
	"sqlite":   true,
}

// BaseDatabaseFactory builds database managers from configuration, applying
// environment variable overrides before handing the config to the manager.
type BaseDatabaseFactory struct {
	logger Logger
}

// NewDatabaseFactory creates a factory with the given logger. A nil logger
// falls back to the package default.
func NewDatabaseFactory(logger Logger) *BaseDatabaseFactory {
	if logger == nil {
		logger = GetLogger()
	}
	return &BaseDatabaseFactory{logger: logger}
}

// CreateFromConfig validates the config, applies env overrides, and returns
// a connected-capable manager. The manager is not yet connected.
func (f *BaseDatabaseFactory) CreateFromConfig(config *Config) (AbstractDatabaseManager, error) {
	if config == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	f.overrideFromEnv(&config.ConnectionConfig)
	if !supportedDatabaseTypes[config.ConnectionConfig.Type] {
		return nil, fmt.Errorf("unsupported database type: %q", config.ConnectionConfig.Type)
	}
	if config.ConnectionConfig.Type != "sqlite" && config.ConnectionConfig.DBName == "" {
		return nil, fmt.Errorf("database name is required for %s", config.ConnectionConfig.Type)
	}
	return newDatabaseManager(config, f.logger), nil
}

// overrideFromEnv applies POSTGRES_* connection overrides and DB_* pool and
// reconnect tuning. Environment always wins over file config so the same
// binary runs unchanged in containers.
func (f *BaseDatabaseFactory) overrideFromEnv(cc *ConnectionConfig) {
	cc.Host = utils.EnvDefaultString("POSTGRES_HOST", cc.Host)
	cc.Port = utils.EnvDefaultInt("POSTGRES_PORT", cc.Port)
	cc.DBName = utils.EnvDefaultString("POSTGRES_DB", cc.DBName)
	cc.Username = utils.EnvDefaultString("POSTGRES_USER", cc.Username)
	cc.Password = utils.EnvDefaultString("POSTGRES_PASSWORD", cc.Password)
	cc.EnableQueryLog = utils.EnvDefaultBool("SQL_ECHO", cc.EnableQueryLog)

	cc.MaxIdleConns = utils.EnvDefaultInt("DB_MAX_IDLE_CONNS", cc.MaxIdleConns)
	cc.MaxOpenConns = utils.EnvDefaultInt("DB_MAX_OPEN_CONNS", cc.MaxOpenConns)
	cc.MaxReconnectTries = utils.EnvDefaultInt("DB_MAX_RECONNECT_TRIES", cc.MaxReconnectTries)
	if v := utils.EnvDefaultInt("DB_CONNECT_TIMEOUT_SECONDS", 0); v > 0 {
		cc.ConnectTimeout = Duration(time.Duration(v) * time.Second)
	}
	if v := utils.EnvDefaultInt("DB_SLOW_QUERY_MILLIS", 0); v > 0 {
		cc.SlowQueryTime = Duration(time.Duration(v) * time.Millisecond)
	}
}

// ConfigFromEnv builds a Postgres config entirely from environment variables,
// matching the POSTGRES_* convention used by the deployment manifests.
func ConfigFromEnv() *Config {
	cc := DefaultConnectionConfig()
	cc.Type = "postgres"
	cc.Host = utils.EnvDefaultString("POSTGRES_HOST", "localhost")
	cc.Port = utils.EnvDefaultInt("POSTGRES_PORT", 5432)
	cc.DBName = utils.EnvDefaultString("POSTGRES_DB", "song_graph")
	cc.Username = utils.EnvDefaultString("POSTGRES_USER", "postgres")
	cc.Password = utils.EnvDefaultString("POSTGRES_PASSWORD", "")
	cc.SSLMode = utils.EnvDefaultString("POSTGRES_SSLMODE", "disable")
	cc.EnableQueryLog = utils.EnvDefaultBool("SQL_ECHO", false)
	return &Config{
		ConnectionConfig: *cc,
		DataMigrateConfig: DataMigrateConfig{
			EnableMigrateOnStartup: true,
			EnableForeignKey:       true,
			EnableSchemaSync:       true,
			AllowColumnAdd:         true,
		},
		DataInitConfig: DataInitConfig{
			Filepath:    "configs/sql",
			Environment: utils.EnvDefaultString("APP_ENV", "development"),
		},
	}
}
