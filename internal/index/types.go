package index

import "time"

// Hit is one scored catalog position from a vector search.
type Hit struct {
	Pos   int
	Score float32
}

// cacheFile is the persisted form of the index vectors.
type cacheFile struct {
	Encoder     string      `json:"encoder"`
	Fingerprint string      `json:"fingerprint"`
	Dim         int         `json:"dim"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Vectors     [][]float32 `json:"vectors"`
}
