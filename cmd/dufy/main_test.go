package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songsCSV = `title,artist,genre
Song A,X,pop
Song B,Y,rock
Bohemian Rhapsody,Queen,rock
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "songs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(songsCSV), 0o644))

	t.Setenv("CATALOG_PATH", csvPath)
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("EMBED_BACKEND", "local")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIndexCommand(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "index")
	require.NoError(t, err)
	assert.Equal(t, "indexed 3 songs with hashed-tfidf-384\n", out)
	assert.FileExists(t, filepath.Join(dir, "data", indexCacheFile))

	_, err = run(t, "index", "--reindex")
	require.NoError(t, err)
}

func TestIndexCommandMissingCatalog(t *testing.T) {
	setupEnv(t)
	t.Setenv("CATALOG_PATH", filepath.Join(t.TempDir(), "missing.csv"))

	_, err := run(t, "index")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "search", "-n", "5", "rock")
	require.NoError(t, err)

	var got searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "rock", got.Query)
	assert.Equal(t, "genre", string(got.Mode))
	assert.Len(t, got.Results, 2)

	out, err = run(t, "search", "bohemian", "rapsody")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ranked", string(got.Mode))
	assert.Equal(t, "bohemian rhapsody", got.Corrected)
	require.NotEmpty(t, got.Results)
	assert.Equal(t, "Bohemian Rhapsody", got.Results[0].Title)
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)
	dst := filepath.Join(dir, "songs.sqlite3")

	out, err := run(t, "import", filepath.Join(dir, "songs.csv"), dst)
	require.NoError(t, err)
	assert.Equal(t, "imported 3 songs into "+dst+"\n", out)

	t.Setenv("CATALOG_PATH", dst)
	out, err = run(t, "search", "pop")
	require.NoError(t, err)
	assert.Contains(t, out, "Song A")
}

func TestBadConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("EMBED_BACKEND", "faiss")

	_, err := run(t, "search", "x")
	assert.ErrorContains(t, err, "unknown embed backend")
}
