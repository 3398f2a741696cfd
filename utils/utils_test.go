package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestIsStable(t *testing.T) {
	a := Digest([]byte(`{"animations":[]}`))
	b := Digest([]byte(`{"animations":[]}`))
	c := Digest([]byte(`{"animations":["fade"]}`))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")

	logger, err := NewLogger("debug", path)
	require.NoError(t, err)
	logger.Info("[Test] hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO | ")
	assert.Contains(t, string(data), "[Test] hello")
}
