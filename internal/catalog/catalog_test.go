package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `name,artists,genre,image,popularity
Song A,X,pop,https://img/a.jpg,81
Song B,Y,Rock,,40
Song C,Z,pop
Song D,W,,https://img/d.jpg,12
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	cat, err := Load(writeFile(t, "songs.csv", sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 4, cat.Len())

	a := cat.Song(0)
	assert.Equal(t, "Song A", a.Title)
	assert.Equal(t, "X", a.Artist)
	assert.Equal(t, "pop", a.Genre)
	assert.Equal(t, "https://img/a.jpg", a.Image)
	assert.Equal(t, map[string]string{"popularity": "81"}, a.Extra)

	// Short rows are padded, never nil.
	c := cat.Song(2)
	assert.Equal(t, "", c.Image)
	assert.Equal(t, "", c.Extra["popularity"])

	assert.True(t, cat.HasGenre())
	assert.Equal(t, []int{0, 2}, cat.GenrePositions("POP"))
	assert.Equal(t, []int{1}, cat.GenrePositions(" rock "))
	assert.Empty(t, cat.GenrePositions("jazz"))
	assert.Equal(t, []string{"Pop", "Rock"}, cat.Genres())
}

func TestLoadCSVWithBOMAndDuplicateAliases(t *testing.T) {
	content := "\ufefftitle,artist,name\nHello,Adele,dup\n"
	cat, err := Load(writeFile(t, "bom.csv", content))
	require.NoError(t, err)

	s := cat.Song(0)
	assert.Equal(t, "Hello", s.Title)
	assert.Equal(t, "dup", s.Extra["name"])
	assert.False(t, cat.HasGenre())
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.csv") }},
		{"empty file", func(t *testing.T) string { return writeFile(t, "empty.csv", "") }},
		{"no artist column", func(t *testing.T) string { return writeFile(t, "bad.csv", "title,genre\nA,pop\n") }},
		{"malformed quoting", func(t *testing.T) string { return writeFile(t, "q.csv", "title,artist\n\"A,\"B\"x\"\n") }},
		{"missing sqlite", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.sqlite3") }},
		{"empty path", func(t *testing.T) string { return "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Load(tt.path(t))
			assert.Nil(t, cat)
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}
}

func TestImportAndLoadSQLite(t *testing.T) {
	src := writeFile(t, "songs.csv", sampleCSV)
	dst := filepath.Join(t.TempDir(), "nested", "catalog.sqlite3")

	n, err := Import(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	fromCSV, err := Load(src)
	require.NoError(t, err)
	fromDB, err := Load(dst)
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Songs(), fromDB.Songs())
	assert.Equal(t, fromCSV.Fingerprint(), fromDB.Fingerprint())

	// Importing again replaces rather than appends.
	_, err = Import(src, dst)
	require.NoError(t, err)
	again, err := Load(dst)
	require.NoError(t, err)
	assert.Equal(t, 4, again.Len())
}

func TestImportRejectsNonSQLiteTarget(t *testing.T) {
	_, err := Import(writeFile(t, "songs.csv", sampleCSV), filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}

func TestLoadSQLiteWithoutSongsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := openDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE unrelated (id INTEGER)").Error)
	closeDB(db)

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestStoreLoadsOnceAndDegrades(t *testing.T) {
	log, hook := test.NewNullLogger()

	missing := NewStore(filepath.Join(t.TempDir(), "gone.csv"), log)
	cat := missing.Load()
	require.NotNil(t, cat)
	assert.Equal(t, 0, cat.Len())
	assert.ErrorIs(t, missing.Err(), ErrDataUnavailable)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	// Second call is served from memory and does not log again.
	assert.Same(t, cat, missing.Load())
	assert.Len(t, hook.Entries, 1)

	hook.Reset()
	ok := NewStore(writeFile(t, "songs.csv", sampleCSV), log)
	assert.Equal(t, 4, ok.Load().Len())
	assert.NoError(t, ok.Err())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestFingerprintAndDocument(t *testing.T) {
	a := New([]Song{{Title: "Song A", Artist: "X", Genre: "pop"}})
	b := New([]Song{{Title: "Song A", Artist: "X", Genre: "pop", Image: "ignored"}})
	c := New([]Song{{Title: "Song A", Artist: "X", Genre: "rock"}})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Equal(t, "Song A X pop", a.Song(0).Document())
	assert.Equal(t, "", Song{Title: "  "}.Document())
}

func TestNewCopiesInput(t *testing.T) {
	songs := []Song{{Title: "A", Artist: "X"}}
	cat := New(songs)
	songs[0].Title = "changed"
	assert.Equal(t, "A", cat.Song(0).Title)

	out := cat.Songs()
	out[0].Title = "changed"
	assert.Equal(t, "A", cat.Song(0).Title)
	assert.True(t, strings.HasPrefix(Empty().Fingerprint(), "e3b0c442"), "empty catalog hashes nothing")
}
