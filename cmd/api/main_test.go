package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/core/config"
	"user-service/internal/core/logger"
)

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(ERROR|WARNING|INFO|DEBUG)\] (.+)$`)

func TestLoggerOptions_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	opt := loggerOptions(config.Log{Level: "info", File: path, MaxSizeMB: 10})
	assert.False(t, opt.AddCaller)
	opt.NoStdout = true

	l, cleanup := logger.New(opt)
	l.Info("GET /users/1 - 200")
	logger.Lifecycle(l, "user api stopped gracefully")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)

	want := []string{"Logging started.", "GET /users/1 - 200", "user api stopped gracefully"}
	for i, line := range lines {
		m := lineRe.FindStringSubmatch(line)
		require.NotNil(t, m, line)
		assert.Equal(t, "INFO", m[1])
		assert.Equal(t, want[i], m[2])
	}
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()

	nested := filepath.Join(root, "a", "b", "users.db")
	require.NoError(t, ensureParentDir(nested))
	assert.DirExists(t, filepath.Dir(nested))
	assert.NoError(t, ensureParentDir("users.db"))

	// 父路径上是普通文件，MkdirAll 必然失败
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	err := ensureParentDir(filepath.Join(blocker, "logs", "app.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create dir")
}
