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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	assert.Equal(t, "localhost", cfg.ConnectionConfig.Host)
	assert.Equal(t, 5432, cfg.ConnectionConfig.Port)
	assert.Equal(t, "song_graph", cfg.ConnectionConfig.DBName)
	assert.Equal(t, "postgres", cfg.ConnectionConfig.Username)
	assert.False(t, cfg.ConnectionConfig.EnableQueryLog)
	assert.True(t, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_DB", "catalog")
	t.Setenv("POSTGRES_USER", "svc")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("SQL_ECHO", "true")

	cfg := ConfigFromEnv()
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 6543, cfg.ConnectionConfig.Port)
	assert.Equal(t, "catalog", cfg.ConnectionConfig.DBName)
	assert.Equal(t, "svc", cfg.ConnectionConfig.Username)
	assert.Equal(t, "secret", cfg.ConnectionConfig.Password)
	assert.True(t, cfg.ConnectionConfig.EnableQueryLog)
}

func TestFactoryEnvOverridesFileConfig(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "env-wins")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")

	cfg := &Config{ConnectionConfig: *DefaultConnectionConfig()}
	cfg.ConnectionConfig.Type = "postgres"
	cfg.ConnectionConfig.Host = "file-host"
	cfg.ConnectionConfig.DBName = "song_graph"

	factory := NewDatabaseFactory(nil)
	manager, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, manager)
	assert.Equal(t, "env-wins", cfg.ConnectionConfig.Host)
	assert.Equal(t, 42, cfg.ConnectionConfig.MaxOpenConns)
}

func TestFactoryRejectsBadConfig(t *testing.T) {
	factory := NewDatabaseFactory(nil)

	_, err := factory.CreateFromConfig(nil)
	assert.Error(t, err)

	cfg := &Config{ConnectionConfig: *DefaultConnectionConfig()}
	cfg.ConnectionConfig.Type = "oracle"
	_, err = factory.CreateFromConfig(cfg)
	assert.ErrorContains(t, err, "unsupported database type")

	cfg.ConnectionConfig.Type = "postgres"
	cfg.ConnectionConfig.DBName = ""
	_, err = factory.CreateFromConfig(cfg)
	assert.ErrorContains(t, err, "database name is required")
}

func TestLoadConfigFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	minimal := "connection:\n  type: sqlite\n  dbname: catalog.db\n"
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
	assert.Equal(t, "catalog.db", cfg.ConnectionConfig.DBName)

	// Omitted settings fall back to the defaults instead of zero values.
	defaults := DefaultConnectionConfig()
	assert.Equal(t, defaults.ConnectTimeout, cfg.ConnectionConfig.ConnectTimeout)
	assert.Equal(t, defaults.MaxOpenConns, cfg.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, defaults.ConnMaxLifetime, cfg.ConnectionConfig.ConnMaxLifetime)
}

func TestConnectWithZeroConnectTimeout(t *testing.T) {
	cfg := &Config{}
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = "file:ConnectZeroTimeout?mode=memory&cache=shared"
	cfg.ConnectionConfig.MaxIdleConns = 1
	cfg.ConnectionConfig.MaxOpenConns = 1

	factory := NewDatabaseFactory(nil)
	manager, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)

	// Every duration in the config is zero; the ping must still get a
	// usable deadline.
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.Ping(context.Background()))
}

func TestDurationYAML(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"90s"`)))
	assert.Equal(t, 90*time.Second, d.AsDuration())

	require.NoError(t, d.UnmarshalJSON([]byte(`30`)))
	assert.Equal(t, 30*time.Second, d.AsDuration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"not-a-duration"`)))
}
