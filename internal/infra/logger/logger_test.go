package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.in))
		})
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &crlfWriter{w: &buf}

	n, err := w.Write([]byte("one\ntwo\r\nthree\n"))
	require.NoError(t, err)
	assert.Equal(t, len("one\ntwo\r\nthree\n"), n)
	assert.Equal(t, "one\r\ntwo\r\nthree\r\n", buf.String())
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padbox.log")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	require.NoError(t, Init(Config{Output: path, File: path, Level: "info"}))
	zlog.Info().Msg("hello from test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello from test"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestInit_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "padbox.log")
	assert.Error(t, Init(Config{Output: path, File: path}))
}
