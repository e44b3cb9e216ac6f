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

// Package models holds the application's table models and the schema
// metadata the dbinit command resets.
package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/dbinit/database"
)

type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

// ItemTag labels an item. It depends on items, so it is created after and
// dropped before it.
type ItemTag struct {
	bun.BaseModel `bun:"table:item_tags,alias:it"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ItemID    int64     `bun:"item_id,notnull" json:"item_id"`
	Label     string    `bun:"label,notnull" json:"label"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Item *Item `bun:"rel:belongs-to,join:item_id=id" json:"-"`
}

// Metadata returns a fresh metadata set with every application table in
// creation order.
func Metadata() *database.Metadata {
	return database.NewMetadata(
		(*Item)(nil),
		(*ItemTag)(nil),
	)
}
