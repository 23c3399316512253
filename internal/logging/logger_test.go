// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_IsInfoLevelSyslogDisabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.False(t, cfg.Syslog.Enabled)
}

func TestNew_ProducesUsableLogger(t *testing.T) {
	l := New(Config{Level: LevelDebug})
	assert.NotNil(t, l.Logger)
}

func TestWithComponent_TagsSubsequentLines(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{slog.New(slog.NewTextHandler(&buf, nil))}
	scoped := base.WithComponent("emitter")
	scoped.Info("hello")

	assert.Contains(t, buf.String(), "component=emitter")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestLevel_MapsToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.slogLevel())
	assert.Equal(t, slog.LevelInfo, LevelInfo.slogLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.slogLevel())
	assert.Equal(t, slog.LevelError, LevelError.slogLevel())
}

func TestNew_SyslogDialFailureFallsBackToStderr(t *testing.T) {
	l := New(Config{Syslog: SyslogConfig{Enabled: true, Host: ""}})
	assert.NotNil(t, l.Logger)
}

func TestSetDefault_ReplacesPackageDefault(t *testing.T) {
	var buf bytes.Buffer
	custom := &Logger{slog.New(slog.NewTextHandler(&buf, nil))}
	SetDefault(custom)
	defer SetDefault(New(DefaultConfig()))

	Default().Info("via default")
	assert.True(t, strings.Contains(buf.String(), "via default"))
}
