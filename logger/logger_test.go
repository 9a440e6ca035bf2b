package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	require.NoError(t, Initialize("info"))
	assert.NotNil(t, GetLogger())
	assert.True(t, GetLogger().Core().Enabled(zap.InfoLevel))
	assert.False(t, GetLogger().Core().Enabled(zap.DebugLevel))
}

func TestInitializeInvalidLevel(t *testing.T) {
	assert.Error(t, Initialize("verbose"))
}

func TestInitializeWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contribgraph.log")

	require.NoError(t, InitializeWithFile("info", FileOptions{Path: path}))
	Info("file logging enabled", zap.String("username", "torvalds"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file logging enabled")
	assert.Contains(t, string(data), `"username":"torvalds"`)
}
