package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
)

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Close()

	Warn("unknown tool", "tool", "getStockPrice", "call_id", "call_1")

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"unknown tool"`)
	assert.Contains(t, out, `"tool":"getStockPrice"`)
	assert.Contains(t, out, `"call_id":"call_1"`)
}

func TestLogger_OddKeyvalsDropped(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Close()

	Info("odd", "key", "value", "dangling")

	assert.Contains(t, buf.String(), `"key":"value"`)
	assert.NotContains(t, buf.String(), "dangling")
}

func TestLogger_SilentBeforeInit(t *testing.T) {
	Close()
	// Не должно паниковать без инициализации
	Info("nothing")
	Debug("nothing", "a", 1)
}

func TestInitLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookbook.log")

	require.NoError(t, InitLogger(config.LogConfig{File: path, Level: "debug"}))
	Debug("LLM request started", "model", "gpt-4o", "messages_count", 2)
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LLM request started")
	assert.Contains(t, string(data), `"messages_count":2`)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(config.LogConfig{Level: "verbose"})
	assert.Error(t, err)
}
