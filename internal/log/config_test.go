package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("Console"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}

func TestConfigWriter(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, Config{Output: &buf}.writer())
	assert.Equal(t, os.Stderr, Config{}.writer())
	assert.NoError(t, Config{Output: &buf}.close())
}

func TestFileConfigRotatesIntoDir(t *testing.T) {
	dir := t.TempDir()
	logger := New(FileConfig(dir, LevelInfo))

	logger.Info("written to file", "user", "alice")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "gsms.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"user":"alice"`)
}

func TestPresetConfigs(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, LevelWarn, def.Level)
	assert.Equal(t, FormatText, def.Format)
	assert.Nil(t, def.Output)
	assert.Equal(t, "gsms", def.ServiceName)

	dev := DevelopmentConfig()
	assert.Equal(t, LevelDebug, dev.Level)
	assert.True(t, dev.AddSource)
	assert.Equal(t, def.ServiceName, dev.ServiceName)
}
