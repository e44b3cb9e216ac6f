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
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the variable that points at an optional YAML file with
// engine settings.
const ConfigFileEnv = "DATABASE_CONFIG_FILE"

// ConnectionConfig describes the engine: where to connect and how to tune the
// pool and statement logging. URL only comes from the environment.
type ConnectionConfig struct {
	URL             string        `yaml:"-" env:"DATABASE_URL"`
	Echo            bool          `yaml:"echo" env:"DATABASE_ECHO"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time" env:"DATABASE_SLOW_QUERY"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DATABASE_CONN_MAX_IDLE_TIME"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"DATABASE_CONNECT_TIMEOUT"`
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the engine.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// DefaultConnectionConfig returns a connection config with statement logging
// on and database/sql pool defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Echo:            true,
		SlowQueryTime:   time.Second * 2,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
	}
}

// LoadConfig builds the engine configuration. Defaults are overlaid by the
// YAML file (configFile, or DATABASE_CONFIG_FILE when empty) and then by the
// environment. A missing or empty DATABASE_URL is a *ConfigurationError.
func LoadConfig(configFile string) (*ConnectionConfig, error) {
	cfg := DefaultConnectionConfig()

	if configFile == "" {
		configFile = strings.TrimSpace(os.Getenv(ConfigFileEnv))
	}
	if configFile != "" {
		if err := LoadConfigFile(configFile, cfg); err != nil {
			return nil, configError(ConfigFileEnv, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, configError("", fmt.Errorf("parse env: %w", err))
	}

	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, configError("DATABASE_URL", ErrMissingDatabaseURL)
	}
	return cfg, nil
}

// LoadConfigFile decodes the YAML file at path into cfg. Keys absent from
// the file keep their current values.
func LoadConfigFile(path string, cfg *ConnectionConfig) error {
	if cfg == nil {
		return errors.New("config target cannot be nil")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
