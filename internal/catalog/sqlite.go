package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// songRow is the SQLite layout of a catalog. Row order follows ID.
type songRow struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	Title  string `gorm:"index:idx_song_meta,priority:1"`
	Artist string `gorm:"index:idx_song_meta,priority:2"`
	Genre  string `gorm:"index:idx_genre"`
	Album  string
	Lyrics string
	Tags   string
	Image  string
	URL    string
	Extra  map[string]string `gorm:"serializer:json"`
}

func (songRow) TableName() string { return "songs" }

func openDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func loadSQLite(path string) ([]Song, error) {
	// Opening a missing file would silently create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer closeDB(db)

	if !db.Migrator().HasTable(&songRow{}) {
		return nil, fmt.Errorf("%w: %s has no songs table", ErrDataUnavailable, path)
	}

	var rows []songRow
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: query songs: %v", ErrDataUnavailable, err)
	}

	songs := make([]Song, len(rows))
	for i, r := range rows {
		songs[i] = Song{
			Title:  r.Title,
			Artist: r.Artist,
			Genre:  r.Genre,
			Album:  r.Album,
			Lyrics: r.Lyrics,
			Tags:   r.Tags,
			Image:  r.Image,
			URL:    r.URL,
			Extra:  r.Extra,
		}
	}
	return songs, nil
}

// writeSQLite replaces the songs table of the database at path with songs.
func writeSQLite(path string, songs []Song) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := db.AutoMigrate(&songRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	rows := make([]songRow, len(songs))
	for i, s := range songs {
		rows[i] = songRow{
			Title:  s.Title,
			Artist: s.Artist,
			Genre:  s.Genre,
			Album:  s.Album,
			Lyrics: s.Lyrics,
			Tags:   s.Tags,
			Image:  s.Image,
			URL:    s.URL,
			Extra:  s.Extra,
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&songRow{}).Error; err != nil {
			return fmt.Errorf("clearing songs: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert songs: %w", err)
		}
		return nil
	})
}
