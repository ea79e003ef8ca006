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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct{ name string }

func TestModelRegistryPriorityOrder(t *testing.T) {
	child := &fakeTable{name: "child"}
	parent := &fakeTable{name: "parent"}

	// Register out of order; the child table carries the higher priority so
	// it must come out after its parent.
	RegisteredModel(
		NewModelAdapter(child, 20),
		NewModelAdapter(parent, 10),
	)

	instances := RegisteredModelInstances()
	require.GreaterOrEqual(t, len(instances), 2)

	parentIdx, childIdx := -1, -1
	for i, instance := range instances {
		if ft, ok := instance.(*fakeTable); ok {
			switch ft.name {
			case "parent":
				parentIdx = i
			case "child":
				childIdx = i
			}
		}
	}
	require.NotEqual(t, -1, parentIdx)
	require.NotEqual(t, -1, childIdx)
	assert.Less(t, parentIdx, childIdx)
}

func TestModelAdapter(t *testing.T) {
	model := &fakeTable{name: "anything"}
	adapter := NewModelAdapter(model, 7)
	assert.Equal(t, 7, adapter.Priority())
	assert.Same(t, model, adapter.Model().(*fakeTable))
}
