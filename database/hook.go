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
	"time"

	"github.com/fatih/color"
	"github.com/song-graph/song-graph/utils"
	"github.com/uptrace/bun"
)

// bunSQLSilent suppresses error echo for expected misses like sql.ErrNoRows.
var bunSQLSilent = utils.EnvDefaultBool("BUN_SQL_SILENT", true)

// slowQueryHook logs queries that exceed the configured threshold and echoes
// failed queries in red.
type slowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

func newSlowQueryHook(threshold time.Duration, logger Logger) *slowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &slowQueryHook{threshold: threshold, logger: logger}
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if event.Err != nil && !(bunSQLSilent && errors.Is(event.Err, sql.ErrNoRows)) {
		h.logger.Error("Query failed",
			"query", color.RedString(event.Query),
			"elapsed", elapsed,
			"error", event.Err.Error())
		return
	}
	if h.threshold > 0 && elapsed >= h.threshold {
		h.logger.Warn("Slow query",
			"query", color.YellowString(event.Query),
			"elapsed", elapsed,
			"threshold", h.threshold)
	}
}
