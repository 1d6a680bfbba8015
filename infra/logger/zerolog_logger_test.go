package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	closer, err := Setup(Options{Debug: true})
	require.NoError(t, err)
	defer func() { assert.NoError(t, closer.Close()) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "service.log")
	closer, err := Setup(Options{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l := New("file-test")
	l.Infof("dropped below level")
	l.Warnf("kept %d", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "kept 1", rec["message"])
	assert.Equal(t, "file-test", rec["component"])

	_, err = Setup(Options{})
	require.NoError(t, err)
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "w")
	l.Debugw("request", map[string]any{"status": 200})
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request", rec["message"])
	assert.EqualValues(t, 200, rec["status"])
	assert.Equal(t, "w", rec["component"])
}
