package index

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
)

// Encoder maps text into the vector space of the index. Implementations must
// be deterministic and safe for concurrent Encode calls once built.
type Encoder interface {
	// Name identifies the encoder and its parameters; cached vectors are only
	// reused by an encoder with the same name.
	Name() string
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Fitter is implemented by encoders that learn weights from the catalog
// documents before encoding. Fit is called once, before any Encode.
type Fitter interface {
	Fit(docs []string)
}

const trigramWeight = 0.5

// HashedEncoder is a local TF-IDF encoder. Word tokens and character
// trigrams are hashed into a fixed number of buckets, weighted by inverse
// document frequency and L2-normalised. Trigrams let misspelt words still
// share most of their features with the correct spelling.
type HashedEncoder struct {
	dim int
	idf []float32 // nil until Fit
}

func NewHashedEncoder(dim int) *HashedEncoder {
	if dim <= 0 {
		dim = 384
	}
	return &HashedEncoder{dim: dim}
}

func (e *HashedEncoder) Name() string {
	return fmt.Sprintf("hashed-tfidf-%d", e.dim)
}

func (e *HashedEncoder) Dim() int {
	return e.dim
}

// Fit computes smoothed IDF weights per bucket: ln((1+n)/(1+df)) + 1.
func (e *HashedEncoder) Fit(docs []string) {
	df := make([]int, e.dim)
	seen := make(map[int]struct{})
	for _, doc := range docs {
		clear(seen)
		e.features(doc, func(bucket int, _ float32) {
			seen[bucket] = struct{}{}
		})
		for b := range seen {
			df[b]++
		}
	}

	n := float64(len(docs))
	idf := make([]float32, e.dim)
	for b := range idf {
		idf[b] = float32(math.Log((1+n)/(1+float64(df[b]))) + 1)
	}
	e.idf = idf
}

// Encode never fails; empty or unusable text yields the zero vector.
func (e *HashedEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	e.features(text, func(bucket int, weight float32) {
		vec[bucket] += weight
	})
	if e.idf != nil {
		for i := range vec {
			vec[i] *= e.idf[i]
		}
	}
	Normalize(vec)
	return vec, nil
}

func (e *HashedEncoder) features(text string, emit func(bucket int, weight float32)) {
	for _, tok := range Tokenize(text) {
		emit(e.bucket("w:"+tok), 1)

		r := []rune("^" + tok + "$")
		for i := 0; i+3 <= len(r); i++ {
			emit(e.bucket("t:"+string(r[i:i+3])), trigramWeight)
		}
	}
}

func (e *HashedEncoder) bucket(feature string) int {
	h := fnv.New32a()
	h.Write([]byte(feature))
	return int(h.Sum32() % uint32(e.dim))
}

// Normalize scales v to unit length in place. The zero vector is left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
