package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info("front: %d detections", 3)
	l.Warning("retry on %s", "back")
	l.Error("boom")

	out := buf.String()
	require.Contains(t, out, "INFO    ")
	require.Contains(t, out, "front: 3 detections")
	require.Contains(t, out, "WARNING retry on back")
	require.Contains(t, out, "ERROR   ")
}

func TestNew_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	l.Error("model missing")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "model missing")

	_, err = os.Stat(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
}
