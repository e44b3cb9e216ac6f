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
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when LoadEnv is called without paths.
const DefaultEnvFile = ".env"

// LoadEnv populates the process environment from .env style files. Variables
// already set are kept. Files that do not exist are skipped; a file that
// exists but cannot be read or parsed is a *ConfigurationError.
func LoadEnv(paths ...string) error {
	return LoadEnvWithLogger(GetLogger(), paths...)
}

// LoadEnvWithLogger is LoadEnv reporting loaded files to logger.
func LoadEnvWithLogger(logger Logger, paths ...string) error {
	if logger == nil {
		logger = GetLogger()
	}
	if len(paths) == 0 {
		paths = []string{DefaultEnvFile}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return configError(p, fmt.Errorf("failed to stat env file: %w", err))
		}
		if err := godotenv.Load(p); err != nil {
			return configError(p, fmt.Errorf("failed to load env file: %w", err))
		}
		logger.Debug("Loaded environment file", "path", p)
	}
	return nil
}
