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
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DialectKind identifies the database family behind a connection URL.
type DialectKind string

const (
	DialectPostgres DialectKind = "postgres"
	DialectMySQL    DialectKind = "mysql"
	DialectSQLite   DialectKind = "sqlite"
)

const sqliteMemory = ":memory:"

// DataSource is a parsed DATABASE_URL ready for sql.Open.
type DataSource struct {
	Kind       DialectKind
	DriverName string
	DSN        string
	Host       string
	Database   string
	InMemory   bool
	redacted   string
}

// String returns the source URL with any password masked.
func (ds *DataSource) String() string { return ds.redacted }

// ParseURL converts a connection URL into a driver name and DSN. Schemes may
// carry a "+driver" suffix, which is ignored. SQLite URLs use three slashes
// for a relative path and four for an absolute one; an empty path or
// ":memory:" selects an in-memory database.
func ParseURL(raw string) (*DataSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, configError("DATABASE_URL", ErrMissingDatabaseURL)
	}
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return nil, configError("DATABASE_URL", errors.New("malformed connection URL: missing scheme"))
	}
	scheme := strings.ToLower(raw[:idx])
	if plus := strings.IndexByte(scheme, '+'); plus >= 0 {
		scheme = scheme[:plus]
	}

	switch scheme {
	case "postgres", "postgresql":
		return parsePostgresURL(raw[idx:])
	case "mysql":
		return parseMySQLURL(raw[idx:])
	case "sqlite", "sqlite3":
		return parseSQLiteURL(raw[idx+len("://"):]), nil
	default:
		return nil, configError("DATABASE_URL", fmt.Errorf("unsupported database scheme: %s, supported schemes: %v",
			scheme, []string{"postgres", "postgresql", "mysql", "sqlite"}))
	}
}

func parsePostgresURL(rest string) (*DataSource, error) {
	u, err := url.Parse("postgres" + rest)
	if err != nil {
		return nil, configError("DATABASE_URL", fmt.Errorf("malformed connection URL: %w", err))
	}
	return &DataSource{
		Kind:       DialectPostgres,
		DriverName: "postgres",
		DSN:        u.String(),
		Host:       u.Host,
		Database:   strings.TrimPrefix(u.Path, "/"),
		redacted:   u.Redacted(),
	}, nil
}

func parseMySQLURL(rest string) (*DataSource, error) {
	u, err := url.Parse("mysql" + rest)
	if err != nil {
		return nil, configError("DATABASE_URL", fmt.Errorf("malformed connection URL: %w", err))
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return nil, configError("DATABASE_URL", errors.New("mysql connection URL must name a database"))
	}

	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3306"
	}
	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.Params = map[string]string{}
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		cfg.Params[key] = values[len(values)-1]
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}

	return &DataSource{
		Kind:       DialectMySQL,
		DriverName: "mysql",
		DSN:        cfg.FormatDSN(),
		Host:       cfg.Addr,
		Database:   dbName,
		redacted:   u.Redacted(),
	}, nil
}

func parseSQLiteURL(rest string) *DataSource {
	path, query, _ := strings.Cut(rest, "?")
	// "sqlite:///x.db" leaves "/x.db"; "sqlite:////abs/x.db" leaves "//abs/x.db".
	path = strings.TrimPrefix(path, "/")

	ds := &DataSource{
		Kind:       DialectSQLite,
		DriverName: sqliteshim.ShimName,
		Database:   path,
		redacted:   "sqlite:///" + path,
	}
	if path == "" || path == sqliteMemory {
		ds.InMemory = true
		ds.Database = sqliteMemory
		path = sqliteMemory
		ds.redacted = "sqlite:///" + sqliteMemory
	}
	ds.DSN = path
	if query != "" {
		ds.DSN += "?" + query
	}
	return ds
}
