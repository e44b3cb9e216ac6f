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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const unorderedSeed = 999

var seedOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SeedFile is one .sql file found by a Seeder.
type SeedFile struct {
	Path  string
	Order int
}

// SeedResult is the outcome of executing one seed file.
type SeedResult struct {
	File         string
	Statements   int
	RowsAffected int64
	Duration     time.Duration
}

// Seeder executes .sql files against a freshly reset schema. Files run in
// ascending numeric prefix order ("010_items.sql" before "020_tags.sql"),
// then by name. File contents are text/template documents rendered with the
// process environment.
type Seeder struct {
	db     bun.IDB
	files  fs.FS
	logger Logger
}

// NewSeeder reads seed files from files, usually os.DirFS(dir).
func NewSeeder(db bun.IDB, files fs.FS, logger Logger) *Seeder {
	if logger == nil {
		logger = GetLogger()
	}
	return &Seeder{db: db, files: files, logger: logger}
}

// Files lists the seed files in execution order.
func (s *Seeder) Files() ([]SeedFile, error) {
	var files []SeedFile
	err := fs.WalkDir(s.files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(d.Name()), ".sql") {
			return nil
		}
		files = append(files, SeedFile{Path: p, Order: seedOrder(d.Name())})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list seed files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Run executes every seed file. The first failing statement stops the run;
// statements already executed are not rolled back.
func (s *Seeder) Run(ctx context.Context) ([]SeedResult, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Info("No seed files found")
		return nil, nil
	}

	results := make([]SeedResult, 0, len(files))
	for _, file := range files {
		result, err := s.runFile(ctx, file)
		if err != nil {
			s.logger.Error("Seed file failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("seed %s: %w", file.Path, err)
		}
		s.logger.Info("Seed file executed",
			"file", result.File,
			"statements", result.Statements,
			"rows_affected", result.RowsAffected,
			"duration", result.Duration.String())
		results = append(results, result)
	}
	return results, nil
}

func (s *Seeder) runFile(ctx context.Context, file SeedFile) (SeedResult, error) {
	start := time.Now()
	result := SeedResult{File: file.Path}

	raw, err := fs.ReadFile(s.files, file.Path)
	if err != nil {
		return result, err
	}
	content, err := renderSeed(file.Path, string(raw))
	if err != nil {
		return result, err
	}

	for _, stmt := range splitStatements(content) {
		res, err := s.db.ExecContext(ctx, stmt)
		if err != nil {
			return result, err
		}
		if n, err := res.RowsAffected(); err == nil {
			result.RowsAffected += n
		}
		result.Statements++
	}
	result.Duration = time.Since(start)
	return result, nil
}

func seedOrder(name string) int {
	m := seedOrderPattern.FindStringSubmatch(name)
	if len(m) < 2 {
		return unorderedSeed
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return unorderedSeed
	}
	return n
}

func renderSeed(name, content string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// splitStatements breaks a script on lines ending with ';'. Blank lines and
// "--" comment lines are dropped.
func splitStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, strings.TrimSuffix(stmt, ";"))
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return statements
}
