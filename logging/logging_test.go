package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/hunterlog/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Console(t *testing.T) {
	l, err := New(true, config.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Debug("console only")
}

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunterlog.log")
	l, err := New(false, config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	l.Info("award persisted")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "award persisted")
}

func TestFallback(t *testing.T) {
	assert.NotNil(t, Fallback())
}
