package search

import (
	"encoding/json"

	"github.com/preeyankakc037/dufy/internal/catalog"
)

// Mode tells which rule produced a result.
type Mode string

const (
	ModeNone     Mode = "none"     // top k was not positive
	ModeSample   Mode = "sample"   // empty or generic query
	ModeGenre    Mode = "genre"    // query named a genre
	ModeRanked   Mode = "ranked"   // similarity ranking
	ModeFallback Mode = "fallback" // ranking failed, random sample instead
)

// Result is the outcome of a search. Items is never nil.
type Result struct {
	Items []Item
	Mode  Mode
	// Query is the normalised query.
	Query string
	// Corrected is the typo-corrected text that was encoded, ModeRanked only.
	Corrected string
	// Cause is why ranking failed, ModeFallback only.
	Cause error
}

// Degraded reports whether the items are a stand-in for a ranked result.
func (r Result) Degraded() bool {
	return r.Mode == ModeFallback
}

// Item is the public projection of a catalog song.
type Item struct {
	Title  string
	Artist string
	Genre  string
	Album  string
	Image  string
	URL    string
	Score  *float32
	Extra  map[string]string
}

// ItemOf projects a catalog song without a score.
func ItemOf(s catalog.Song) Item {
	return newItem(s, nil)
}

func newItem(s catalog.Song, score *float32) Item {
	var extra map[string]string
	if len(s.Extra) > 0 {
		extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			extra[k] = v
		}
	}
	return Item{
		Title:  s.Title,
		Artist: s.Artist,
		Genre:  s.Genre,
		Album:  s.Album,
		Image:  s.Image,
		URL:    s.URL,
		Score:  score,
		Extra:  extra,
	}
}

// MarshalJSON flattens Extra into the object so every source column reaches
// the client. Named fields win over extras with the same key.
func (it Item) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(it.Extra)+7)
	for k, v := range it.Extra {
		m[k] = v
	}
	m["title"] = it.Title
	m["artist"] = it.Artist
	for k, v := range map[string]string{"genre": it.Genre, "album": it.Album, "image": it.Image, "url": it.URL} {
		if v != "" {
			m[k] = v
		}
	}
	if it.Score != nil {
		m["score"] = *it.Score
	}
	return json.Marshal(m)
}
