package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type field int

const (
	fieldExtra field = iota
	fieldTitle
	fieldArtist
	fieldGenre
	fieldAlbum
	fieldLyrics
	fieldTags
	fieldImage
	fieldURL
)

var columnAliases = map[string]field{
	"title":       fieldTitle,
	"name":        fieldTitle,
	"track_name":  fieldTitle,
	"song":        fieldTitle,
	"song_name":   fieldTitle,
	"artist":      fieldArtist,
	"artists":     fieldArtist,
	"artist_name": fieldArtist,
	"artist(s)":   fieldArtist,
	"genre":       fieldGenre,
	"track_genre": fieldGenre,
	"album":       fieldAlbum,
	"album_name":  fieldAlbum,
	"lyrics":      fieldLyrics,
	"text":        fieldLyrics,
	"tags":        fieldTags,
	"mood":        fieldTags,
	"description": fieldTags,
	"image":       fieldImage,
	"image_url":   fieldImage,
	"cover":       fieldImage,
	"url":         fieldURL,
	"link":        fieldURL,
	"spotify_url": fieldURL,
}

// columnMap resolves a header row to song fields. The first column claiming a
// field wins; later aliases of the same field are kept as extras.
type columnMap struct {
	fields []field
	names  []string
}

func resolveColumns(header []string) (columnMap, error) {
	m := columnMap{
		fields: make([]field, len(header)),
		names:  make([]string, len(header)),
	}
	taken := make(map[field]bool)
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		m.names[i] = name
		f, ok := columnAliases[strings.ToLower(name)]
		if !ok || taken[f] {
			m.fields[i] = fieldExtra
			continue
		}
		m.fields[i] = f
		taken[f] = true
	}
	if !taken[fieldTitle] || !taken[fieldArtist] {
		return columnMap{}, fmt.Errorf("%w: need title and artist columns, got %v", ErrDataUnavailable, m.names)
	}
	return m, nil
}

func (m columnMap) song(record []string) Song {
	var s Song
	for i, f := range m.fields {
		v := ""
		if i < len(record) {
			v = record[i]
		}
		switch f {
		case fieldTitle:
			s.Title = v
		case fieldArtist:
			s.Artist = v
		case fieldGenre:
			s.Genre = v
		case fieldAlbum:
			s.Album = v
		case fieldLyrics:
			s.Lyrics = v
		case fieldTags:
			s.Tags = v
		case fieldImage:
			s.Image = v
		case fieldURL:
			s.URL = v
		default:
			if m.names[i] == "" {
				continue
			}
			if s.Extra == nil {
				s.Extra = make(map[string]string)
			}
			s.Extra[m.names[i]] = v
		}
	}
	return s
}

// readCSV parses a catalog with a header row. Short rows are padded with
// empty values; any parse error fails the whole load.
func readCSV(r io.Reader) ([]Song, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %v", ErrDataUnavailable, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var songs []Song
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", ErrDataUnavailable, err)
		}
		songs = append(songs, cols.song(record))
	}
	return songs, nil
}

func loadCSV(path string) ([]Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	return readCSV(f)
}
