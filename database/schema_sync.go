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
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// SynchronizeSchema compares registered models against the live schema and
// adds columns the models define but the tables lack. It never modifies or
// drops existing columns; those changes require an explicit migration.
func SynchronizeSchema(ctx context.Context, db *bun.DB, config *DataMigrateConfig, logger Logger) error {
	if logger == nil {
		logger = GetLogger()
	}
	for _, model := range RegisteredModelInstances() {
		typ := reflect.TypeOf(model)
		for typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		table := db.Table(typ)
		want := make([]columnDef, 0, len(table.Fields))
		for _, field := range table.Fields {
			want = append(want, columnDef{
				name:    field.Name,
				sqlType: field.CreateTableSQLType,
			})
		}
		if err := syncTableColumns(ctx, db, config, table.Name, want, logger); err != nil {
			return err
		}
	}
	return nil
}

type columnDef struct {
	name    string
	sqlType string
}

func syncTableColumns(ctx context.Context, db *bun.DB, config *DataMigrateConfig, tableName string, want []columnDef, logger Logger) error {
	existing, err := listExistingColumns(ctx, db, tableName)
	if err != nil {
		if is, class := IsSqlError(err); is && class == NoTableErr {
			logger.Debug("Table does not exist yet, skipping sync", "table", tableName)
			return nil
		}
		return fmt.Errorf("failed to inspect table %s: %w", tableName, err)
	}

	for _, col := range want {
		if existing[strings.ToLower(col.name)] {
			continue
		}
		if !config.AllowColumnAdd {
			logger.Warn("Model defines a column the table lacks, column add disabled",
				"table", tableName, "column", col.name)
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, col.name, col.sqlType)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if is, class := IsSqlError(err); is && class == ExistColumnErr {
				continue
			}
			return fmt.Errorf("failed to add column %s.%s: %w", tableName, col.name, err)
		}
		logger.Info("Added column", "table", tableName, "column", col.name, "type", col.sqlType)
	}
	return nil
}

func listExistingColumns(ctx context.Context, db *bun.DB, tableName string) (map[string]bool, error) {
	columns := map[string]bool{}
	switch db.Dialect().Name() {
	case dialect.SQLite:
		rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				cid       int
				name      string
				ctype     string
				notnull   int
				dfltValue *string
				pk        int
			)
			if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
				return nil, err
			}
			columns[strings.ToLower(name)] = true
		}
		return columns, rows.Err()
	case dialect.MySQL:
		rows, err := db.QueryContext(ctx,
			"SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?",
			tableName)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanColumnNames(rows, columns)
	default:
		rows, err := db.QueryContext(ctx,
			"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1",
			tableName)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanColumnNames(rows, columns)
	}
}

func scanColumnNames(rows *sql.Rows, columns map[string]bool) (map[string]bool, error) {
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns[strings.ToLower(name)] = true
	}
	return columns, rows.Err()
}
