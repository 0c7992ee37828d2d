// Package search answers free-text song queries over the catalog, degrading
// to random samples instead of failing.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/preeyankakc037/dufy/internal/catalog"
	"github.com/preeyankakc037/dufy/internal/index"
)

// ErrUnknownSong is returned by Similar for a position outside the catalog.
var ErrUnknownSong = errors.New("unknown song")

const (
	DefaultTopK         = 30
	DefaultFallbackSize = 20
)

// DefaultGenericTokens are queries that carry no intent and get a sample.
var DefaultGenericTokens = []string{"popular", "trending", "home"}

type Engine struct {
	catalog *catalog.Catalog
	index   *index.Index
	log     logrus.FieldLogger

	generic      map[string]struct{}
	fallbackSize int
	defaultTopK  int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

type Option func(*Engine)

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithSeed fixes the sampling seed. Zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		if seed != 0 {
			e.rng = rand.New(rand.NewSource(seed))
		}
	}
}

func WithGenericTokens(tokens ...string) Option {
	return func(e *Engine) {
		e.generic = make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			e.generic[Normalize(t)] = struct{}{}
		}
	}
}

func WithFallbackSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.fallbackSize = n
		}
	}
}

func WithDefaultTopK(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultTopK = n
		}
	}
}

// New creates an engine over cat. idx may be nil, in which case every
// non-generic, non-genre query falls back to a random sample.
func New(cat *catalog.Catalog, idx *index.Index, opts ...Option) *Engine {
	if cat == nil {
		cat = catalog.Empty()
	}
	e := &Engine{
		catalog:      cat,
		index:        idx,
		log:          logrus.StandardLogger(),
		fallbackSize: DefaultFallbackSize,
		defaultTopK:  DefaultTopK,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	WithGenericTokens(DefaultGenericTokens...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize is the query form every rule compares against.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (e *Engine) DefaultTopK() int {
	return e.defaultTopK
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Search applies, in order: sample for empty or generic queries, genre
// sample for an exact genre name, similarity ranking, and a smaller random
// sample when ranking fails. It never returns an error.
func (e *Engine) Search(ctx context.Context, query string, topK int) Result {
	q := Normalize(query)
	res := Result{Query: q, Items: []Item{}}

	if topK <= 0 {
		res.Mode = ModeNone
		return res
	}

	if _, ok := e.generic[q]; ok || q == "" {
		res.Mode = ModeSample
		res.Items = e.Sample(topK)
		return res
	}

	if positions := e.catalog.GenrePositions(q); len(positions) > 0 {
		res.Mode = ModeGenre
		res.Items = e.items(e.sample(positions, topK))
		return res
	}

	items, corrected, err := e.rank(ctx, q, topK)
	if err != nil {
		return e.fallback(res, topK, err)
	}

	e.log.WithFields(logrus.Fields{"query": q, "corrected": corrected, "results": len(items)}).Debug("Search ranked")
	res.Mode = ModeRanked
	res.Corrected = corrected
	res.Items = items
	return res
}

// Similar ranks the songs closest to the song at pos, excluding itself.
func (e *Engine) Similar(ctx context.Context, pos, topK int) (Result, error) {
	if pos < 0 || pos >= e.catalog.Len() {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownSong, pos)
	}

	res := Result{Query: e.catalog.Song(pos).Title, Items: []Item{}}
	if topK <= 0 {
		res.Mode = ModeNone
		return res, nil
	}

	vec, ok := e.index.Vector(pos)
	if !ok || e.index.Len() != e.catalog.Len() {
		return e.fallback(res, topK, index.ErrIndexUnavailable), nil
	}

	hits, err := e.index.Search(vec, topK, pos)
	if err != nil {
		return e.fallback(res, topK, err), nil
	}
	res.Mode = ModeRanked
	res.Items = e.hitItems(hits)
	return res, nil
}

// Sample returns up to n songs drawn uniformly without replacement.
func (e *Engine) Sample(n int) []Item {
	all := make([]int, e.catalog.Len())
	for i := range all {
		all[i] = i
	}
	return e.items(e.sample(all, n))
}

func (e *Engine) rank(ctx context.Context, q string, topK int) (items []Item, corrected string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ranking panicked: %v", r)
		}
	}()

	if e.index.Len() == 0 {
		return nil, "", index.ErrIndexUnavailable
	}
	if e.index.Len() != e.catalog.Len() {
		return nil, "", fmt.Errorf("%w: index has %d entries for %d songs", index.ErrIndexUnavailable, e.index.Len(), e.catalog.Len())
	}

	corrected = e.index.Vocabulary().Correct(q)
	vec, err := e.index.EncodeQuery(ctx, corrected)
	if err != nil {
		return nil, corrected, err
	}
	hits, err := e.index.Search(vec, topK, -1)
	if err != nil {
		return nil, corrected, err
	}
	return e.hitItems(hits), corrected, nil
}

func (e *Engine) fallback(res Result, topK int, cause error) Result {
	n := min(e.fallbackSize, topK)
	res.Mode = ModeFallback
	res.Cause = cause
	res.Items = e.Sample(n)
	e.log.WithError(cause).WithFields(logrus.Fields{"query": res.Query, "results": len(res.Items)}).
		Warn("Ranking unavailable, returning random sample")
	return res
}

// sample picks min(k, len(positions)) positions with a partial Fisher-Yates
// shuffle. positions is not modified.
func (e *Engine) sample(positions []int, k int) []int {
	k = min(k, len(positions))
	if k <= 0 {
		return nil
	}
	pool := make([]int, len(positions))
	copy(pool, positions)

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + e.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func (e *Engine) items(positions []int) []Item {
	out := make([]Item, len(positions))
	for i, pos := range positions {
		out[i] = ItemOf(e.catalog.Song(pos))
	}
	return out
}

func (e *Engine) hitItems(hits []index.Hit) []Item {
	out := make([]Item, len(hits))
	for i, h := range hits {
		score := h.Score
		out[i] = newItem(e.catalog.Song(h.Pos), &score)
	}
	return out
}
