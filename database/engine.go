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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// Engine is the process-wide database handle. It is safe for concurrent use;
// every caller draws its own connection from the pool.
type Engine struct {
	config *ConnectionConfig
	source *DataSource
	db     *bun.DB
	sqlDB  *sql.DB
	logger Logger
	echo   io.Writer
}

type EngineOption func(*Engine)

// WithLogger sets the logger used for engine events and slow statements.
func WithLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEchoWriter sets where executed statements are written when echo is on.
func WithEchoWriter(w io.Writer) EngineOption {
	return func(e *Engine) {
		if w != nil {
			e.echo = w
		}
	}
}

// NewEngine builds the engine for cfg. No connection is opened until the
// first statement, Ping or Conn.
//
// With cfg.Echo every statement is written to the echo writer. BUNDEBUG
// overrides that: BUNDEBUG=0 (or empty) disables the echo, BUNDEBUG=1 logs
// only failed statements and BUNDEBUG=2 logs all of them.
func NewEngine(cfg *ConnectionConfig, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, configError("", errors.New("database configuration cannot be empty"))
	}
	source, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config: cfg,
		source: source,
		logger: GetLogger(),
		echo:   os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}

	sqlDB, err := sql.Open(source.DriverName, source.DSN)
	if err != nil {
		return nil, configError("DATABASE_URL", fmt.Errorf("failed to open %s driver: %w", source.DriverName, err))
	}
	e.sqlDB = sqlDB
	e.db = bun.NewDB(sqlDB, newDialect(source.Kind))

	e.configureConnectionPool()

	if cfg.Echo {
		e.db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.WithWriter(e.echo),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if cfg.SlowQueryTime > 0 {
		e.db.AddQueryHook(NewSlowQueryHook(cfg.SlowQueryTime, e.logger))
	}

	e.logger.Debug("Database engine created", "type", source.Kind, "url", source.String(), "echo", cfg.Echo)
	return e, nil
}

func newDialect(kind DialectKind) schema.Dialect {
	switch kind {
	case DialectPostgres:
		return pgdialect.New()
	case DialectMySQL:
		return mysqldialect.New()
	default:
		return sqlitedialect.New()
	}
}

func (e *Engine) configureConnectionPool() {
	if e.source.InMemory {
		// every pooled connection to ":memory:" would be a separate database
		e.sqlDB.SetMaxOpenConns(1)
		e.sqlDB.SetMaxIdleConns(1)
		e.sqlDB.SetConnMaxLifetime(0)
		e.sqlDB.SetConnMaxIdleTime(0)
		return
	}
	e.sqlDB.SetMaxIdleConns(e.config.MaxIdleConns)
	e.sqlDB.SetMaxOpenConns(e.config.MaxOpenConns)
	e.sqlDB.SetConnMaxLifetime(e.config.ConnMaxLifetime)
	e.sqlDB.SetConnMaxIdleTime(e.config.ConnMaxIdleTime)
}

// DB returns the bun handle.
func (e *Engine) DB() *bun.DB { return e.db }

// SQLDB returns the underlying database/sql pool.
func (e *Engine) SQLDB() *sql.DB { return e.sqlDB }

// Kind reports the database family.
func (e *Engine) Kind() DialectKind { return e.source.Kind }

// Source returns the parsed connection URL.
func (e *Engine) Source() *DataSource { return e.source }

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *ConnectionConfig { return e.config }

// Logger returns the engine logger.
func (e *Engine) Logger() Logger { return e.logger }

// Ping opens (or reuses) a connection and verifies the database answers
// within the connect timeout.
func (e *Engine) Ping(ctx context.Context) error {
	ctx, cancel := e.withConnectTimeout(ctx)
	defer cancel()
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	e.logger.Info("Database connected successfully", "type", e.source.Kind, "host", e.source.Host, "database", e.source.Database)
	return nil
}

// Conn reserves a dedicated connection. The caller must Close it. For an
// in-memory SQLite engine the pool holds a single connection, so other
// statements wait until it is released.
func (e *Engine) Conn(ctx context.Context) (bun.Conn, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return bun.Conn{}, fmt.Errorf("failed to open database connection: %w", err)
	}
	return conn, nil
}

func (e *Engine) withConnectTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.ConnectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.config.ConnectTimeout)
}

// HealthCheck pings the database and reports pool usage.
func (e *Engine) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	ctx, cancel := e.withConnectTimeout(ctx)
	defer cancel()

	err := e.db.PingContext(ctx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
	}

	stats := e.sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

// Stats returns database/sql pool statistics.
func (e *Engine) Stats() *DBStats {
	stats := e.sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// Close releases the pool. The engine is normally kept for the process
// lifetime; Close exists for tests and CLI commands.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		e.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	e.logger.Debug("Database connection closed")
	return nil
}
