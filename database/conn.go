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
	"fmt"
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalManager AbstractDatabaseManager
	globalConfig  *Config
)

// InitDB creates the global database manager from config, connects, and runs
// migrations and data seeding according to the config flags.
func InitDB(ctx context.Context, config *Config) error {
	if config == nil {
		config = ConfigFromEnv()
	}

	factory := NewDatabaseFactory(GetLogger())
	manager, err := factory.CreateFromConfig(config)
	if err != nil {
		return err
	}
	if err := manager.Connect(ctx); err != nil {
		return err
	}

	if config.DataMigrateConfig.EnableMigrateOnStartup {
		if err := manager.RunMigrations(ctx); err != nil {
			_ = manager.Disconnect()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	if config.DataInitConfig.AutoInitOnStartup {
		if err := manager.InitData(ctx); err != nil {
			_ = manager.Disconnect()
			return fmt.Errorf("failed to initialize data: %w", err)
		}
	}

	globalMu.Lock()
	globalManager = manager
	globalConfig = config
	globalMu.Unlock()
	return nil
}

// GetDB returns the global bun handle. It panics when InitDB has not been
// called, matching how the repositories expect an initialized process.
func GetDB() *bun.DB {
	globalMu.RLock()
	manager := globalManager
	globalMu.RUnlock()
	if manager == nil {
		panic("database: InitDB must be called before GetDB")
	}
	return manager.GetDB()
}

// GetManager returns the global manager, or nil before InitDB.
func GetManager() AbstractDatabaseManager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// GetConfig returns the active config, or nil before InitDB.
func GetConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// CloseDB disconnects the global manager. Safe to call multiple times.
func CloseDB() error {
	globalMu.Lock()
	manager := globalManager
	globalManager = nil
	globalConfig = nil
	globalMu.Unlock()
	if manager == nil {
		return nil
	}
	return manager.Disconnect()
}

// GetHealthStatus runs a health check against the global connection.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	manager := GetManager()
	if manager == nil {
		return &HealthStatus{LastError: "database is not initialized"}
	}
	return manager.HealthCheck(ctx)
}

// GetDatabaseStats snapshots the global connection pool statistics.
func GetDatabaseStats() *DBStats {
	manager := GetManager()
	if manager == nil {
		return &DBStats{}
	}
	return manager.GetStats()
}

// RunMigrations runs schema migrations on the global connection.
func RunMigrations(ctx context.Context) error {
	manager := GetManager()
	if manager == nil {
		return fmt.Errorf("database is not initialized")
	}
	return manager.RunMigrations(ctx)
}

// InitData seeds the global connection from the configured SQL directory.
func InitData(ctx context.Context) error {
	manager := GetManager()
	if manager == nil {
		return fmt.Errorf("database is not initialized")
	}
	return manager.InitData(ctx)
}
