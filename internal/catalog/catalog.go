// Package catalog holds the immutable song table the service searches over.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDataUnavailable marks a catalog source that is missing or unreadable.
var ErrDataUnavailable = errors.New("catalog data unavailable")

// Song is one catalog row. Absent values are empty strings.
type Song struct {
	Title  string            `json:"title"`
	Artist string            `json:"artist"`
	Genre  string            `json:"genre,omitempty"`
	Album  string            `json:"album,omitempty"`
	Lyrics string            `json:"lyrics,omitempty"`
	Tags   string            `json:"tags,omitempty"`
	Image  string            `json:"image,omitempty"`
	URL    string            `json:"url,omitempty"`
	Extra  map[string]string `json:"-"`
}

// Document is the text the search index encodes for the song.
func (s Song) Document() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{s.Title, s.Artist, s.Genre, s.Album, s.Tags, s.Lyrics} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Catalog is an ordered, read-only sequence of songs. A song's identity is its
// position. The zero value is not usable; use New or Empty.
type Catalog struct {
	songs  []Song
	genres map[string][]int // normalised genre -> positions, in catalog order
}

// New builds a catalog that owns a copy of songs.
func New(songs []Song) *Catalog {
	c := &Catalog{
		songs:  make([]Song, len(songs)),
		genres: make(map[string][]int),
	}
	copy(c.songs, songs)
	for i, s := range c.songs {
		key := normalizeGenre(s.Genre)
		if key == "" {
			continue
		}
		c.genres[key] = append(c.genres[key], i)
	}
	return c
}

// Empty is the degenerate catalog used when the source cannot be loaded.
func Empty() *Catalog {
	return New(nil)
}

func (c *Catalog) Len() int {
	return len(c.songs)
}

// Song returns the song at position i. It panics when i is out of range.
func (c *Catalog) Song(i int) Song {
	return c.songs[i]
}

// Songs returns a copy of all songs in catalog order.
func (c *Catalog) Songs() []Song {
	out := make([]Song, len(c.songs))
	copy(out, c.songs)
	return out
}

// HasGenre reports whether any song carries a genre value.
func (c *Catalog) HasGenre() bool {
	return len(c.genres) > 0
}

// GenrePositions returns the positions whose genre equals value, compared
// case-insensitively. The slice must not be modified.
func (c *Catalog) GenrePositions(value string) []int {
	return c.genres[normalizeGenre(value)]
}

// Genres lists the distinct genres title-cased and sorted.
func (c *Catalog) Genres() []string {
	caser := cases.Title(language.Und)
	seen := make(map[string]struct{}, len(c.genres))
	out := make([]string, 0, len(c.genres))
	for key := range c.genres {
		name := caser.String(key)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fingerprint identifies the catalog's indexed content. Two catalogs with the
// same fingerprint produce the same search index.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	for _, s := range c.songs {
		for _, f := range []string{s.Title, s.Artist, s.Genre, s.Album, s.Tags, s.Lyrics} {
			h.Write([]byte(f))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeGenre(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
