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
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ResetSchema drops every table in md and then creates them again. All rows
// in those tables are lost. The first failure aborts the reset with a
// *SchemaError; the two phases do not share a transaction, so a failed create
// leaves the tables dropped.
//
// It must not run concurrently with other traffic on the same tables.
func ResetSchema(ctx context.Context, db bun.IDB, md *Metadata) error {
	return resetSchema(ctx, db, md, GetLogger())
}

// ResetSchema runs ResetSchema on the engine.
func (e *Engine) ResetSchema(ctx context.Context, md *Metadata) error {
	return resetSchema(ctx, e.db, md, e.logger)
}

func resetSchema(ctx context.Context, db bun.IDB, md *Metadata, logger Logger) error {
	logger.Warn("Resetting database schema, existing rows will be lost", "tables", md.Len())
	if err := dropAll(ctx, db, md, logger); err != nil {
		return err
	}
	if err := createAll(ctx, db, md, logger); err != nil {
		return err
	}
	logger.Info("Database schema reset completed", "tables", md.Len())
	return nil
}

// DropAll drops every table in md that exists, dependents first.
func DropAll(ctx context.Context, db bun.IDB, md *Metadata) error {
	return dropAll(ctx, db, md, GetLogger())
}

func dropAll(ctx context.Context, db bun.IDB, md *Metadata, logger Logger) error {
	models := md.Instances()
	cascade := db.Dialect().Name() == dialect.PG
	for i := len(models) - 1; i >= 0; i-- {
		model := models[i]
		q := db.NewDropTable().Model(model).IfExists()
		if cascade {
			q = q.Cascade()
		}
		if _, err := q.Exec(ctx); err != nil {
			return &SchemaError{Phase: PhaseDrop, Table: resolveTableName(db, model), Err: err}
		}
		logger.Debug("Dropped table", "table", resolveTableName(db, model))
	}
	return nil
}

// CreateAll creates every table in md that does not exist yet, in priority
// order, including foreign keys declared through bun relations.
func CreateAll(ctx context.Context, db bun.IDB, md *Metadata) error {
	return createAll(ctx, db, md, GetLogger())
}

func createAll(ctx context.Context, db bun.IDB, md *Metadata, logger Logger) error {
	for _, model := range md.Instances() {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return &SchemaError{Phase: PhaseCreate, Table: resolveTableName(db, model), Err: err}
		}
		logger.Debug("Created table", "table", resolveTableName(db, model))
	}
	return nil
}

// resolveTableName prefers the explicit table tag on bun.BaseModel and falls
// back to the name bun derives from the struct.
func resolveTableName(db bun.IDB, model interface{}) string {
	t := reflect.TypeOf(model)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Sprintf("%T", model)
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Name() != "BaseModel" || !strings.Contains(f.Type.PkgPath(), "uptrace/bun") {
			continue
		}
		for _, part := range strings.Split(f.Tag.Get("bun"), ",") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "table:") {
				return strings.TrimPrefix(part, "table:")
			}
		}
	}
	return db.Dialect().Tables().Get(t).Name
}
