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

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"github.com/tomoncle/dbinit/database"
	"github.com/tomoncle/dbinit/repository"
)

type Item struct {
	bun.BaseModel `bun:"table:items"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func newItemRepository(t *testing.T) repository.Repository[Item] {
	t.Helper()
	cfg := database.DefaultConnectionConfig()
	cfg.URL = "sqlite:///" + filepath.Join(t.TempDir(), "repo.db")
	cfg.Echo = false

	engine, err := database.NewEngine(cfg, database.WithLogger(database.NopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	require.NoError(t, engine.ResetSchema(context.Background(), database.NewMetadata((*Item)(nil))))
	return repository.NewRepository[Item](engine.DB())
}

func TestRepositoryCreateAndRead(t *testing.T) {
	repo := newItemRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Item{Name: "apple"}, &Item{Name: "pear"}))
	require.NoError(t, repo.Create(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "apple", items[0].Name)
	assert.Equal(t, "pear", items[1].Name)

	one, err := repo.GetOne(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "pear", one.Name)

	_, err = repo.GetOne(ctx, 999)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestRepositoryUpsertOnConflict(t *testing.T) {
	repo := newItemRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Item{ID: 1, Name: "apple"}))
	require.NoError(t, repo.Upsert(ctx, []string{"name"}, nil,
		&Item{ID: 1, Name: "green apple"}, &Item{ID: 2, Name: "plum"}))

	items, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "green apple", items[0].Name)
	assert.Equal(t, "plum", items[1].Name)

	assert.ErrorIs(t, repo.Upsert(ctx, nil, nil, &Item{ID: 3}), repository.ErrNoFields)
}

func TestRepositoryDelete(t *testing.T) {
	repo := newItemRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Item{Name: "a"}, &Item{Name: "b"}, &Item{Name: "c"}))
	require.NoError(t, repo.Delete(ctx, 1))

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepositoryUpsertOnDuplicateKey(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, mysqldialect.New())
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `items`") + `.*` +
		regexp.QuoteMeta("ON DUPLICATE KEY UPDATE name = VALUES(name)")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := repository.NewRepository[Item](db)
	require.NoError(t, repo.Upsert(context.Background(), []string{"name"}, nil, &Item{ID: 1, Name: "apple"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
