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
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ErrMissingDatabaseURL is reported when DATABASE_URL is unset or empty.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// ConfigurationError reports a missing or malformed setting. The process
// should fail fast instead of running with an invalid engine.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configError(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}

// SchemaPhase names the step of a schema reset that failed.
type SchemaPhase string

const (
	PhaseDrop   SchemaPhase = "drop"
	PhaseCreate SchemaPhase = "create"
)

// SchemaError reports a failed drop or create step. Err is the driver error,
// unchanged.
type SchemaError struct {
	Phase SchemaPhase
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s failed for table %s: %v", e.Phase, e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Kind classifies the underlying driver error.
func (e *SchemaError) Kind() SQLError {
	_, kind := IsSqlError(e.Err)
	return kind
}

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	DependentObjectsErr
	InsufficientPrivilegeErr
	UnknownDatabaseErr
	ConnectionErr
)

func (e SQLError) String() string {
	switch e {
	case NoRowsErr:
		return "no_rows"
	case NoTableErr:
		return "no_table"
	case ExistTableErr:
		return "exist_table"
	case DuplicateKeyErr:
		return "duplicate_key"
	case NotNullViolationErr:
		return "not_null_violation"
	case ForeignKeyViolationErr:
		return "foreign_key_violation"
	case DependentObjectsErr:
		return "dependent_objects"
	case InsufficientPrivilegeErr:
		return "insufficient_privilege"
	case UnknownDatabaseErr:
		return "unknown_database"
	case ConnectionErr:
		return "connection"
	default:
		return "unknown"
	}
}

var mysqlErrorCodes = map[uint16]SQLError{
	1044: InsufficientPrivilegeErr,
	1045: InsufficientPrivilegeErr,
	1049: UnknownDatabaseErr,
	1050: ExistTableErr,
	1051: NoTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1142: InsufficientPrivilegeErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
}

var postgresErrorCodes = map[pq.ErrorCode]SQLError{
	"42P01": NoTableErr,
	"42P07": ExistTableErr,
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23503": ForeignKeyViolationErr,
	"2BP01": DependentObjectsErr,
	"42501": InsufficientPrivilegeErr,
	"3D000": UnknownDatabaseErr,
}

// sqlite and text-only drivers are classified by message.
var messagePatterns = []struct {
	kind     SQLError
	contains []string
}{
	{NoTableErr, []string{"no such table"}},
	{ExistTableErr, []string{"already exists"}},
	{DuplicateKeyErr, []string{"unique constraint failed"}},
	{NotNullViolationErr, []string{"not null constraint failed"}},
	{ForeignKeyViolationErr, []string{"foreign key constraint failed"}},
	{InsufficientPrivilegeErr, []string{"permission denied", "readonly database", "read-only"}},
	{ConnectionErr, []string{"unable to open database file", "connection refused", "no such host", "bad connection"}},
}

// IsSqlError reports whether err came from a database driver and classifies it.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorCodes[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if kind, ok := postgresErrorCodes[pqErr.Code]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	for _, p := range messagePatterns {
		for _, c := range p.contains {
			if strings.Contains(s, c) {
				return true, p.kind
			}
		}
	}
	return false, UnknownErr
}
