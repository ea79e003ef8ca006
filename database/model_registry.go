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
	"sort"
	"sync"
)

// SQLModel is implemented by registered table models. Priority controls
// creation order: lower values are created first so referenced tables exist
// before tables that point at them.
type SQLModel interface {
	Model() interface{}
	Priority() int
}

// ModelAdapter wraps a bun model pointer with a creation priority.
type ModelAdapter struct {
	model    interface{}
	priority int
}

// NewModelAdapter builds a SQLModel for a bun model pointer like (*Song)(nil).
func NewModelAdapter(model interface{}, priority int) *ModelAdapter {
	return &ModelAdapter{model: model, priority: priority}
}

func (a *ModelAdapter) Model() interface{} { return a.model }

func (a *ModelAdapter) Priority() int { return a.priority }

var (
	modelRegistryMu sync.Mutex
	modelRegistry   []SQLModel
)

// RegisteredModel adds models to the global registry. Model packages call
// this from init so importing them is enough to get their tables created.
func RegisteredModel(models ...SQLModel) {
	modelRegistryMu.Lock()
	defer modelRegistryMu.Unlock()
	modelRegistry = append(modelRegistry, models...)
}

// GetRegisteredModels returns registered models sorted by priority.
func GetRegisteredModels() []SQLModel {
	modelRegistryMu.Lock()
	defer modelRegistryMu.Unlock()
	out := make([]SQLModel, len(modelRegistry))
	copy(out, modelRegistry)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// RegisteredModelInstances returns the raw model pointers sorted by priority,
// ready for bun RegisterModel and table creation.
func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	out := make([]interface{}, 0, len(models))
	for _, m := range models {
		out = append(out, m.Model())
	}
	return out
}
