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
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ForeignKeyConstraint describes a single foreign key to add after base
// tables exist.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string
	OnUpdate        string
	ConstraintName  string
}

// Name returns the explicit constraint name, or a generated fk_ name.
func (c *ForeignKeyConstraint) Name() string {
	if c.ConstraintName != "" {
		return c.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", c.Table, c.Column)
}

// GenerateSQL renders the ALTER TABLE statement for this constraint.
func (c *ForeignKeyConstraint) GenerateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		c.Table, c.Name(), c.Column, c.ReferenceTable, c.ReferenceColumn)
	if c.OnDelete != "" {
		fmt.Fprintf(&b, " ON DELETE %s", c.OnDelete)
	}
	if c.OnUpdate != "" {
		fmt.Fprintf(&b, " ON UPDATE %s", c.OnUpdate)
	}
	return b.String()
}

// getForeignKeyConstraints lists the code-defined constraints of the catalog
// schema. Credits cascade with both sides so removing a song or an artist
// removes its credit rows.
func getForeignKeyConstraints() []ForeignKeyConstraint {
	return []ForeignKeyConstraint{
		{
			Table:           "artist_roles",
			Column:          "song_id",
			ReferenceTable:  "songs",
			ReferenceColumn: "id",
			OnDelete:        "CASCADE",
			ConstraintName:  "fk_artist_roles_song_id",
		},
		{
			Table:           "artist_roles",
			Column:          "artist_id",
			ReferenceTable:  "artists",
			ReferenceColumn: "id",
			OnDelete:        "CASCADE",
			ConstraintName:  "fk_artist_roles_artist_id",
		},
	}
}

// ForeignKeyManager applies foreign key constraints idempotently.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the code-defined constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &ForeignKeyManager{
		constraints: getForeignKeyConstraints(),
		logger:      logger,
	}
}

// Constraints returns the managed constraint list.
func (fm *ForeignKeyManager) Constraints() []ForeignKeyConstraint {
	return fm.constraints
}

// ApplyConstraints adds every managed constraint, skipping ones that already
// exist. SQLite cannot add constraints to existing tables, so it is skipped
// entirely; cascading deletes are handled in the repositories instead.
func (fm *ForeignKeyManager) ApplyConstraints(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		fm.logger.Debug("Skipping foreign key constraints on sqlite")
		return nil
	}
	for _, c := range fm.constraints {
		if err := fm.applyConstraint(ctx, db, c); err != nil {
			return err
		}
	}
	return nil
}

func (fm *ForeignKeyManager) applyConstraint(ctx context.Context, db bun.IDB, c ForeignKeyConstraint) error {
	if _, err := db.ExecContext(ctx, c.GenerateSQL()); err != nil {
		if is, class := IsSqlError(err); is {
			switch class {
			case ExistIndexErr, ExistColumnErr, ExistTableErr:
				fm.logger.Debug("Foreign key already exists", "constraint", c.Name())
				return nil
			}
		}
		s := strings.ToLower(err.Error())
		if strings.Contains(s, "already exists") || strings.Contains(s, "duplicate") {
			fm.logger.Debug("Foreign key already exists", "constraint", c.Name())
			return nil
		}
		return fmt.Errorf("failed to add foreign key %s: %w", c.Name(), err)
	}
	fm.logger.Info("Added foreign key", "constraint", c.Name(),
		"table", c.Table, "references", c.ReferenceTable)
	return nil
}
