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

package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"DEBUG":   logrus.DebugLevel,
		" warn ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func TestNewLoggerIsRegisteredOnce(t *testing.T) {
	a := NewLogger("utils-test-once")
	b := NewLogger("utils-test-once")
	assert.Same(t, a, b)

	assert.True(t, SetLoggerLevel("utils-test-once", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("utils-test-missing", "debug"))
}

func TestConsoleFormatter(t *testing.T) {
	f := &ConsoleFormatter{LoggerName: "DATABASE", NameWidth: 10, NoColor: true}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow statement",
		Data:    logrus.Fields{"table": "items", "duration": "2s"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2025-01-02 03:04:05.000")
	assert.Contains(t, line, ".000    WARN ")
	assert.NotContains(t, line, "WARNING")
	assert.NotContains(t, line, "\x1b[")
	assert.Contains(t, line, "[  DATABASE] : slow statement duration=2s table=items\n")
}

func TestConsoleFormatterColor(t *testing.T) {
	entry := &logrus.Entry{Time: time.Now(), Level: logrus.ErrorLevel, Message: "boom"}

	out, err := (&ConsoleFormatter{LoggerName: "DATABASE"}).Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), ansiRed+"  ERROR"+ansiReset)
}

func TestNewLoggerHonoursNoColor(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })

	color.NoColor = true
	f, ok := NewLogger("utils-test-nocolor").Formatter.(*ConsoleFormatter)
	require.True(t, ok)
	assert.True(t, f.NoColor)

	color.NoColor = false
	t.Setenv("CONSOLE_LOG_COLOR", "false")
	f, ok = NewLogger("utils-test-nocolor-env").Formatter.(*ConsoleFormatter)
	require.True(t, ok)
	assert.True(t, f.NoColor)

	t.Setenv("CONSOLE_LOG_COLOR", "true")
	f, ok = NewLogger("utils-test-color").Formatter.(*ConsoleFormatter)
	require.True(t, ok)
	assert.False(t, f.NoColor)
}

func TestConfigureOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("utils-test-output")
	ConfigureOutput(&buf)
	l.SetLevel(logrus.InfoLevel)

	l.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_STR", "  value ")
	t.Setenv("UTILS_TEST_BLANK", "   ")
	t.Setenv("UTILS_TEST_BOOL", "true")
	t.Setenv("UTILS_TEST_BAD_BOOL", "maybe")

	assert.Equal(t, "value", EnvDefaultString("UTILS_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefaultString("UTILS_TEST_BLANK", "def"))
	assert.Equal(t, "def", EnvDefaultString("UTILS_TEST_UNSET", "def"))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BAD_BOOL", true))
	assert.False(t, EnvDefaultBool("UTILS_TEST_UNSET", false))
}
