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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// TableRepository reads and writes the rows of one model's table.
type TableRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, entity ...*T) error

	// Upsert inserts the entities, updating fields on a key conflict.
	// duplicateKeys defaults to "id" on dialects with ON CONFLICT.
	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Delete(ctx context.Context, id any) error

	// DeleteAll removes every row and reports how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

// Repository adds the underlying Bun query builders for advanced use cases.
type Repository[T any] interface {
	TableRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewDelete() *bun.DeleteQuery
}
