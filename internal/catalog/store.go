package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Load reads the catalog at path, choosing the source by file extension:
// .db, .sqlite and .sqlite3 are SQLite databases, anything else is CSV.
// All failures wrap ErrDataUnavailable.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no catalog path configured", ErrDataUnavailable)
	}

	var (
		songs []Song
		err   error
	)
	if isSQLite(path) {
		songs, err = loadSQLite(path)
	} else {
		songs, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return New(songs), nil
}

// Import copies the catalog at src into a SQLite catalog at dst and returns
// the number of songs written.
func Import(src, dst string) (int, error) {
	if !isSQLite(dst) {
		return 0, fmt.Errorf("import target %s is not a sqlite file", dst)
	}
	cat, err := Load(src)
	if err != nil {
		return 0, err
	}
	if err := writeSQLite(dst, cat.songs); err != nil {
		return 0, err
	}
	return cat.Len(), nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Store loads the catalog once and serves it for the rest of the process.
// A failed load leaves an empty catalog in place.
type Store struct {
	path string
	log  logrus.FieldLogger

	once sync.Once
	cat  *Catalog
	err  error
}

func NewStore(path string, log logrus.FieldLogger) *Store {
	return &Store{path: path, log: log}
}

// Load returns the catalog, reading the source on the first call only.
func (s *Store) Load() *Catalog {
	s.once.Do(func() {
		cat, err := Load(s.path)
		if err != nil {
			s.log.WithError(err).WithField("path", s.path).Error("Catalog not loaded, serving empty catalog")
			s.cat, s.err = Empty(), err
			return
		}
		s.log.WithField("path", s.path).Infof("Loaded %d songs", cat.Len())
		s.cat = cat
	})
	return s.cat
}

// Err is the load failure, if any. It is nil before the first Load.
func (s *Store) Err() error {
	return s.err
}
