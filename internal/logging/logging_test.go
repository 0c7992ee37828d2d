package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFileAndOutput(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "dufy.log")

	log, closer, err := New(Options{Level: "warn", File: file, MaxSizeMB: 1, MaxBackups: 1, Output: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.WithField("query", "pop").Warn("search degraded")
	require.NoError(t, closer.Close())

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "search degraded")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "query=pop")
}

func TestNewWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Info("ready")
	assert.Contains(t, buf.String(), "ready")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
