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
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

// ErrNoFields is returned by Upsert when no update columns are given.
var ErrNoFields = errors.New("upsert fields cannot be empty")

type tableRepository[T any] struct {
	db bun.IDB
}

// NewRepository returns a repository for T backed by db.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &tableRepository[T]{db: db}
}

func (r *tableRepository[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *tableRepository[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *tableRepository[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *tableRepository[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *tableRepository[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	if err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *tableRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Order("id").Scan(ctx)
	return entities, err
}

func (r *tableRepository[T]) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *tableRepository[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *tableRepository[T]) Delete(ctx context.Context, id any) error {
	_, err := r.db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *tableRepository[T]) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().Model((*T)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tableRepository[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)

	features := r.db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, fields, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

func (r *tableRepository[T]) upsertOnDuplicateKey(ctx context.Context, fields []string, entities []*T) error {
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func (r *tableRepository[T]) upsertOnConflict(ctx context.Context, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ", ") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func (r *tableRepository[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}
