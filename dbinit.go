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

package dbinit

import (
	"context"
	"io"
	"sync"

	"github.com/tomoncle/dbinit/database"
)

// Options controls how Open bootstraps the engine. The zero value loads
// ".env" from the working directory and reads configuration from the
// environment.
type Options struct {
	// EnvFiles are loaded in order; missing files are skipped.
	EnvFiles []string
	// ConfigFile is an optional YAML file with engine settings.
	ConfigFile string
	// Metadata is the schema reset by InitDB.
	Metadata *database.Metadata
	// Logger receives the env loading and engine logs of this bootstrap. It
	// becomes the package logger only if none is installed yet, so package
	// level helpers such as database.ResetSchema keep the first one.
	Logger database.Logger
	// EchoWriter receives logged statements; stdout when nil.
	EchoWriter io.Writer
}

// Bootstrap owns the engine handle and the schema metadata it resets.
type Bootstrap struct {
	engine   *database.Engine
	metadata *database.Metadata
}

// Open loads the environment, reads the configuration and builds the engine.
// No connection is opened until the engine is first used.
func Open(opts Options) (*Bootstrap, error) {
	logger := opts.Logger
	if logger != nil {
		database.InitLogger(logger)
	} else {
		logger = database.GetLogger()
	}
	if err := database.LoadEnvWithLogger(logger, opts.EnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := database.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	engineOpts := []database.EngineOption{database.WithLogger(logger)}
	if opts.EchoWriter != nil {
		engineOpts = append(engineOpts, database.WithEchoWriter(opts.EchoWriter))
	}
	engine, err := database.NewEngine(cfg, engineOpts...)
	if err != nil {
		return nil, err
	}

	md := opts.Metadata
	if md == nil {
		md = database.NewMetadata()
	}
	return &Bootstrap{engine: engine, metadata: md}, nil
}

// InitDB drops every table in the bootstrap's metadata and creates them
// again. Data in those tables is lost.
func (b *Bootstrap) InitDB(ctx context.Context) error {
	return b.engine.ResetSchema(ctx, b.metadata)
}

// Engine returns the shared engine handle.
func (b *Bootstrap) Engine() *database.Engine { return b.engine }

// Metadata returns the schema metadata reset by InitDB.
func (b *Bootstrap) Metadata() *database.Metadata { return b.metadata }

// Close releases the engine's connection pool.
func (b *Bootstrap) Close() error { return b.engine.Close() }

var (
	defaultOnce      sync.Once
	defaultBootstrap *Bootstrap
	defaultErr       error
)

// Default returns the process-wide bootstrap, built on first call with zero
// Options. A failed build is cached and returned on every later call.
func Default() (*Bootstrap, error) {
	defaultOnce.Do(func() {
		defaultBootstrap, defaultErr = Open(Options{})
	})
	return defaultBootstrap, defaultErr
}

// InitDB resets md on the default engine.
func InitDB(ctx context.Context, md *database.Metadata) error {
	b, err := Default()
	if err != nil {
		return err
	}
	return b.engine.ResetSchema(ctx, md)
}
