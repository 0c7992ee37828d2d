// Package index builds the searchable vector representation of a catalog and
// answers nearest-neighbour queries against it.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/preeyankakc037/dufy/internal/catalog"
)

var (
	// ErrIndexUnavailable means there is no usable index to search.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrZeroVector means the query encoded to nothing searchable.
	ErrZeroVector = errors.New("query has no searchable terms")
)

// Index maps every catalog position to a unit-length vector. It is immutable
// after Build and safe for concurrent use.
type Index struct {
	encoder Encoder
	vectors [][]float32
	vocab   *Vocabulary
	builtAt time.Time
}

type BuildOptions struct {
	// CachePath, when set, is where vectors are persisted and reused from.
	CachePath string
	// Rebuild ignores an existing cache file.
	Rebuild bool
	Log     logrus.FieldLogger
}

// Build encodes every song of cat. Songs with no text get the zero vector.
// The returned index always has exactly cat.Len() entries.
func Build(ctx context.Context, cat *catalog.Catalog, enc Encoder, opts BuildOptions) (*Index, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	songs := cat.Songs()
	docs := make([]string, len(songs))
	vocabTexts := make([]string, 0, len(songs)*5)
	for i, s := range songs {
		docs[i] = s.Document()
		vocabTexts = append(vocabTexts, s.Title, s.Artist, s.Genre, s.Album, s.Tags)
	}

	if f, ok := enc.(Fitter); ok {
		f.Fit(docs)
	}

	ix := &Index{
		encoder: enc,
		vocab:   NewVocabulary(vocabTexts),
	}

	fingerprint := cat.Fingerprint()
	if opts.CachePath != "" && !opts.Rebuild {
		vectors, updatedAt, err := loadCache(opts.CachePath, enc.Name(), fingerprint, len(docs))
		switch {
		case err == nil:
			ix.vectors, ix.builtAt = vectors, updatedAt
			log.WithField("path", opts.CachePath).Infof("Loaded %d cached vectors", len(vectors))
			return ix, nil
		case errors.Is(err, os.ErrNotExist):
		default:
			log.WithError(err).Warn("Ignoring index cache, re-encoding catalog")
		}
	}

	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := enc.Encode(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("encode song %d (%s): %w", i, songs[i].Title, err)
		}
		if i > 0 && len(vec) != len(vectors[0]) {
			return nil, fmt.Errorf("encode song %d: got %d dimensions, want %d", i, len(vec), len(vectors[0]))
		}
		Normalize(vec)
		vectors[i] = vec

		if (i+1)%1000 == 0 {
			log.Debugf("Encoded %d/%d songs", i+1, len(docs))
		}
	}
	ix.vectors = vectors
	ix.builtAt = time.Now().UTC()

	if opts.CachePath != "" {
		if err := saveCache(opts.CachePath, enc.Name(), fingerprint, vectors, ix.builtAt); err != nil {
			log.WithError(err).Warn("Could not save index cache")
		}
	}

	log.WithField("encoder", enc.Name()).Infof("Index built: %d songs, %d vocabulary words", ix.Len(), ix.vocab.Len())
	return ix, nil
}

// Len is the number of indexed positions. A nil index has length 0.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.vectors)
}

// Dim is the vector length, 0 for an empty index.
func (ix *Index) Dim() int {
	if ix.Len() == 0 {
		return 0
	}
	return len(ix.vectors[0])
}

func (ix *Index) EncoderName() string {
	return ix.encoder.Name()
}

func (ix *Index) Vocabulary() *Vocabulary {
	return ix.vocab
}

func (ix *Index) BuiltAt() time.Time {
	return ix.builtAt
}

// Vector returns the stored vector for pos.
func (ix *Index) Vector(pos int) ([]float32, bool) {
	if pos < 0 || pos >= ix.Len() {
		return nil, false
	}
	return ix.vectors[pos], true
}

// EncodeQuery encodes text with the index's encoder and normalises it.
func (ix *Index) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if ix.Len() == 0 {
		return nil, ErrIndexUnavailable
	}
	vec, err := ix.encoder.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	Normalize(vec)
	return vec, nil
}

// Search returns up to k positions ranked by cosine similarity to query,
// best first. Equal scores keep catalog order. exclude, if in range, is left
// out of the results.
func (ix *Index) Search(query []float32, k int, exclude int) ([]Hit, error) {
	if ix.Len() == 0 {
		return nil, ErrIndexUnavailable
	}
	if len(query) != ix.Dim() {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.Dim())
	}
	if isZero(query) {
		return nil, ErrZeroVector
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(ix.vectors))
	for pos, vec := range ix.vectors {
		if pos == exclude {
			continue
		}
		hits = append(hits, Hit{Pos: pos, Score: dot(query, vec)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// dot equals cosine similarity for unit vectors.
func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
