/*
 * Copyright 2025 tomoncle.
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

// TableModel is a table definition known to the data-model layer. Instance
// returns a bun model (usually a nil struct pointer); Priority orders table
// creation, lower first.
type TableModel interface {
	Instance() interface{}
	Priority() int
}

// Metadata is the set of table definitions a schema reset operates on. The
// application's data-model layer owns it and passes it to ResetSchema.
type Metadata struct {
	mu     sync.RWMutex
	models []TableModel
}

// NewMetadata registers instances with priorities in argument order.
func NewMetadata(instances ...interface{}) *Metadata {
	md := &Metadata{}
	md.Add(instances...)
	return md
}

// Register adds a table definition.
func (md *Metadata) Register(model TableModel) {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.models = append(md.models, model)
}

// Add registers instances after the existing tables, in argument order.
func (md *Metadata) Add(instances ...interface{}) {
	md.mu.Lock()
	defer md.mu.Unlock()
	next := 0
	for _, m := range md.models {
		if m.Priority() >= next {
			next = m.Priority() + 1
		}
	}
	for i, inst := range instances {
		md.models = append(md.models, NewModelAdapter(inst, next+i))
	}
}

// Models returns the definitions in creation order: ascending priority, ties
// kept in registration order.
func (md *Metadata) Models() []TableModel {
	if md == nil {
		return nil
	}
	md.mu.RLock()
	defer md.mu.RUnlock()

	result := make([]TableModel, len(md.models))
	copy(result, md.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

// Instances returns the bun models in creation order.
func (md *Metadata) Instances() []interface{} {
	models := md.Models()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

// Len reports the number of registered tables.
func (md *Metadata) Len() int {
	if md == nil {
		return 0
	}
	md.mu.RLock()
	defer md.mu.RUnlock()
	return len(md.models)
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct instance and priority into a TableModel.
func NewModelAdapter(instance interface{}, priority int) TableModel {
	return &ModelAdapter{
		instance: instance,
		priority: priority,
	}
}

func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

func (a *ModelAdapter) Priority() int {
	return a.priority
}
