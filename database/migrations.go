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
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Migration records an applied schema migration.
type Migration struct {
	bun.BaseModel `bun:"table:migrations,alias:m"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Version     string    `bun:"version,notnull,unique"`
	Description string    `bun:"description"`
	AppliedAt   time.Time `bun:"applied_at,nullzero,notnull,default:current_timestamp"`
}

// MigrationItem pairs a version with the function that applies it. Run
// receives the migration transaction so the body and the version record
// commit or roll back together.
type MigrationItem struct {
	Version     string
	Description string
	Run         func(ctx context.Context, db bun.IDB) error
}

// runMigrations applies pending migrations in order, each inside its own
// transaction, and records applied versions in the migrations table.
func runMigrations(ctx context.Context, db *bun.DB, config *Config, logger Logger) error {
	if logger == nil {
		logger = GetLogger()
	}
	if err := createMigrationTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := GetAppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedSet[m.Version] = true
	}

	for _, item := range getAllMigrations(config, logger) {
		if appliedSet[item.Version] {
			logger.Debug("Migration already applied", "version", item.Version)
			continue
		}
		if err := runMigration(ctx, db, item, logger); err != nil {
			return fmt.Errorf("migration %s failed: %w", item.Version, err)
		}
	}

	if config.DataMigrateConfig.EnableSchemaSync {
		if err := SynchronizeSchema(ctx, db, &config.DataMigrateConfig, logger); err != nil {
			return fmt.Errorf("schema synchronization failed: %w", err)
		}
	}
	return nil
}

func createMigrationTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func getAllMigrations(config *Config, logger Logger) []MigrationItem {
	items := []MigrationItem{
		{
			Version:     "001_create_base_tables",
			Description: "Create songs, artists, and artist_roles tables",
			Run:         createBaseTables,
		},
	}
	if config.DataMigrateConfig.EnableForeignKey {
		items = append(items, MigrationItem{
			Version:     "002_add_foreign_keys",
			Description: "Add foreign key constraints for credit rows",
			Run: func(ctx context.Context, db bun.IDB) error {
				fkFile := config.DataMigrateConfig.ForeignKeyFile
				if fkFile != "" {
					manager, err := NewConfigurableForeignKeyManager(logger, fkFile)
					if err != nil {
						return err
					}
					return manager.ApplyConstraints(ctx, db)
				}
				return NewForeignKeyManager(logger).ApplyConstraints(ctx, db)
			},
		})
	}
	if config.DataInitConfig.AutoInitOnMigration {
		items = append(items, MigrationItem{
			Version:     "003_seed_initial_data",
			Description: "Seed catalog data from SQL files",
			Run: func(ctx context.Context, db bun.IDB) error {
				mgr := NewSQLInitManager(db, &config.DataInitConfig, logger)
				return mgr.Execute(ctx)
			},
		})
	}
	return items
}

func runMigration(ctx context.Context, db *bun.DB, item MigrationItem, logger Logger) error {
	logger.Info("Applying migration", "version", item.Version, "description", item.Description)
	start := time.Now()

	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := item.Run(ctx, tx); err != nil {
			return err
		}
		record := &Migration{
			Version:     item.Version,
			Description: item.Description,
			AppliedAt:   time.Now(),
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("Migration applied", "version", item.Version, "elapsed", time.Since(start))
	return nil
}

// createBaseTables creates every registered model table in priority order.
func createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}

// GetAppliedMigrations lists applied migrations ordered by version.
func GetAppliedMigrations(ctx context.Context, db *bun.DB) ([]Migration, error) {
	var migrations []Migration
	err := db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return migrations, nil
}
