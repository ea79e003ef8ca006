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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

// SQLInitManager executes seed SQL files from a directory tree laid out as
//
//	<root>/common/NNN_name.sql
//	<root>/environments/<env>/NNN_name.sql
//
// Common files run first, then environment files, each set ordered by file
// name. Every file runs inside a transaction; when the seeder itself runs
// inside a migration transaction the files join it.
type SQLInitManager struct {
	db     bun.IDB
	config *DataInitConfig
	logger Logger
}

// NewSQLInitManager creates a seeder for the configured SQL directory.
func NewSQLInitManager(db bun.IDB, config *DataInitConfig, logger Logger) *SQLInitManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &SQLInitManager{db: db, config: config, logger: logger}
}

// Execute runs all seed files. A missing root directory is not an error so
// deployments without seed data start cleanly.
func (m *SQLInitManager) Execute(ctx context.Context) error {
	root := m.config.Filepath
	if root == "" {
		root = "configs/sql"
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		m.logger.Debug("Seed SQL directory does not exist, skipping", "path", root)
		return nil
	}

	files, err := m.GetSQLFiles(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		m.logger.Debug("No seed SQL files found", "path", root)
		return nil
	}

	for _, file := range files {
		if err := m.executeFile(ctx, file); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file, err)
		}
	}
	m.logger.Info("Seed SQL complete", "files", len(files))
	return nil
}

// GetSQLFiles lists the seed files to run, common first then environment.
func (m *SQLInitManager) GetSQLFiles(root string) ([]string, error) {
	var files []string

	commonFiles, err := listSQLFiles(filepath.Join(root, "common"))
	if err != nil {
		return nil, err
	}
	files = append(files, commonFiles...)

	if env := m.config.Environment; env != "" {
		envFiles, err := listSQLFiles(filepath.Join(root, "environments", env))
		if err != nil {
			return nil, err
		}
		files = append(files, envFiles...)
	}
	return files, nil
}

func listSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (m *SQLInitManager) executeFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	statements := splitSQLStatements(string(data))
	if len(statements) == 0 {
		return nil
	}

	m.logger.Info("Executing seed SQL", "file", filepath.Base(path), "statements", len(statements))
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %q: %w", truncateSQL(stmt), err)
			}
		}
		return nil
	})
}

// splitSQLStatements splits a script on semicolons, ignoring semicolons
// inside single-quoted strings and dropping line comments.
func splitSQLStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	lines := strings.Split(script, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inString && (trimmed == "" || strings.HasPrefix(trimmed, "--")) {
			continue
		}
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if ch == '\'' {
				inString = !inString
			}
			if ch == ';' && !inString {
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					statements = append(statements, stmt)
				}
				current.Reset()
				continue
			}
			current.WriteByte(ch)
		}
		current.WriteByte('\n')
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

func truncateSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
