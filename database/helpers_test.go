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
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type logEntry struct {
	level  string
	msg    string
	fields []interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) SetLevel(LogLevel) {}
func (l *recordingLogger) Debug(msg string, fields ...interface{}) {
	l.record("debug", msg, fields)
}
func (l *recordingLogger) Info(msg string, fields ...interface{}) { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interface{}) { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interface{}) {
	l.record("error", msg, fields)
}

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

// syncBuffer is written from query hooks and read from the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type Tag struct {
	bun.BaseModel `bun:"table:tags"`

	ID     int64  `bun:"id,pk,autoincrement"`
	ItemID int64  `bun:"item_id,notnull"`
	Label  string `bun:"label"`
	Item   *Item  `bun:"rel:belongs-to,join:item_id=id"`
}

// newSQLiteEngine builds an engine on a fresh database file under t.TempDir.
func newSQLiteEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.URL = fmt.Sprintf("sqlite:///%s", filepath.Join(t.TempDir(), "test.db"))
	cfg.Echo = false
	cfg.SlowQueryTime = time.Minute

	engine, err := NewEngine(cfg, append([]EngineOption{WithLogger(NopLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}
