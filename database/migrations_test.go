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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newMigrationTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, createMigrationTable(context.Background(), db))
	return db
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestRunMigrationRecordsVersionAtomically(t *testing.T) {
	db := newMigrationTestDB(t)
	ctx := context.Background()

	item := MigrationItem{
		Version:     "900_add_scratch_table",
		Description: "scratch table for the happy path",
		Run: func(ctx context.Context, db bun.IDB) error {
			_, err := db.ExecContext(ctx, "CREATE TABLE scratch (id INTEGER PRIMARY KEY)")
			return err
		},
	}
	require.NoError(t, runMigration(ctx, db, item, GetLogger()))

	assert.True(t, tableExists(t, db, "scratch"))
	applied, err := GetAppliedMigrations(ctx, db)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "900_add_scratch_table", applied[0].Version)
}

func TestRunMigrationRollsBackWorkWithRecord(t *testing.T) {
	db := newMigrationTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	item := MigrationItem{
		Version:     "901_failing",
		Description: "fails after doing work",
		Run: func(ctx context.Context, db bun.IDB) error {
			if _, err := db.ExecContext(ctx, "CREATE TABLE half_done (id INTEGER PRIMARY KEY)"); err != nil {
				return err
			}
			return boom
		},
	}
	err := runMigration(ctx, db, item, GetLogger())
	require.ErrorIs(t, err, boom)

	// The failed migration leaves neither its work nor its version record.
	assert.False(t, tableExists(t, db, "half_done"))
	applied, err := GetAppliedMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
