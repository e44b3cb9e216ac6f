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
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestSlowQueryHook(t *testing.T) {
	color.NoColor = true

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	logger := &recordingLogger{}
	hook := NewSlowQueryHook(time.Second, logger)
	hook.now = func() time.Time { return start.Add(3 * time.Second) }

	ctx := context.Background()
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT * FROM items", StartTime: start})
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: start.Add(2500 * time.Millisecond)})
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: "DROP TABLE items", StartTime: start, Err: errors.New("boom")})

	warns := logger.byLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "Database slow query detected", warns[0].msg)
	assert.Contains(t, warns[0].fields, "SELECT")
	assert.Contains(t, warns[0].fields, "SELECT * FROM items")
}

func TestSlowQueryHookDisabled(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewSlowQueryHook(0, logger)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now().Add(-time.Hour)})
	assert.Empty(t, logger.byLevel("warn"))
}
