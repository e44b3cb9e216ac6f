//go:build integration

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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Run with: go test -tags integration ./database/...
func TestPostgresResetSchema(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dbinit_test"),
		tcpostgres.WithUsername("dbinit"),
		tcpostgres.WithPassword("dbinit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", fmt.Sprintf("postgresql://dbinit:dbinit@%s:%s/dbinit_test?sslmode=disable", host, port.Port()))
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Echo = false

	engine, err := NewEngine(cfg, WithLogger(NopLogger()))
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()
	require.NoError(t, engine.Ping(ctx))

	db := engine.DB()
	md := NewMetadata((*Item)(nil), (*Tag)(nil))
	require.NoError(t, engine.ResetSchema(ctx, md))

	item := &Item{Name: "apple"}
	_, err = db.NewInsert().Model(item).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&Tag{ItemID: item.ID, Label: "fruit"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, engine.ResetSchema(ctx, md))

	tables, err := ListTables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"items", "tags"}, tables)
	n, err := db.NewSelect().Model((*Item)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = db.NewInsert().Model(&Tag{ItemID: 42, Label: "orphan"}).Exec(ctx)
	require.Error(t, err, "foreign keys are recreated")
	_, kind := IsSqlError(err)
	assert.Equal(t, ForeignKeyViolationErr, kind)
}
