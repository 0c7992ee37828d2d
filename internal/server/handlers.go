package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/preeyankakc037/dufy/internal/index"
	"github.com/preeyankakc037/dufy/internal/search"
	"github.com/preeyankakc037/dufy/internal/spotify"
)

const (
	modeHeader = "X-Recommendation-Mode"

	maxLimit       = 100
	similarLimit   = 10
	trendingSample = 30
)

type Handlers struct {
	engine   *search.Engine
	index    *index.Index
	trending spotify.Source
	encoder  HealthChecker
	log      logrus.FieldLogger
	pages    pageSet
}

func NewHandlers(opts Options) *Handlers {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	engine := opts.Engine
	if engine == nil {
		engine = search.New(nil, nil, search.WithLogger(log))
	}
	return &Handlers{
		engine:   engine,
		index:    opts.Index,
		trending: opts.Trending,
		encoder:  opts.Encoder,
		log:      log,
		pages:    loadPages(),
	}
}

type recommendResponse struct {
	Recommendations []search.Item `json:"recommendations"`
}

func (h *Handlers) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if !params.Has("query") {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	limit, ok := parseLimit(w, params.Get("limit"), h.engine.DefaultTopK())
	if !ok {
		return
	}

	res := h.engine.Search(r.Context(), params.Get("query"), limit)
	w.Header().Set(modeHeader, string(res.Mode))
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: res.Items})
}

type trendingResponse struct {
	Source          string `json:"source"`
	Recommendations any    `json:"recommendations"`
}

// HandleTrending serves upstream trending tracks, or a catalog sample when
// the upstream source is unavailable or returns nothing.
func (h *Handlers) HandleTrending(w http.ResponseWriter, r *http.Request) {
	if tracks, ok := h.fetchTrending(r); ok {
		writeJSON(w, http.StatusOK, trendingResponse{Source: "spotify", Recommendations: tracks})
		return
	}
	w.Header().Set(modeHeader, string(search.ModeSample))
	writeJSON(w, http.StatusOK, trendingResponse{Source: "catalog", Recommendations: h.engine.Sample(trendingSample)})
}

func (h *Handlers) fetchTrending(r *http.Request) ([]spotify.Track, bool) {
	if h.trending == nil {
		return nil, false
	}
	tracks, err := h.trending.FetchTrending(r.Context())
	switch {
	case errors.Is(err, spotify.ErrNotConfigured):
		return nil, false
	case err != nil:
		h.log.WithError(err).Warn("Trending fetch failed, serving catalog sample")
		return nil, false
	case len(tracks) == 0:
		h.log.Warn("Trending source returned no tracks, serving catalog sample")
		return nil, false
	}
	return tracks, true
}

type similarResponse struct {
	Source          search.Item   `json:"source"`
	Recommendations []search.Item `json:"recommendations"`
}

func (h *Handlers) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'id'")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	limit, ok := parseLimit(w, r.URL.Query().Get("limit"), similarLimit)
	if !ok {
		return
	}

	res, err := h.engine.Similar(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set(modeHeader, string(res.Mode))
	writeJSON(w, http.StatusOK, similarResponse{
		Source:          search.ItemOf(h.engine.Catalog().Song(id)),
		Recommendations: res.Items,
	})
}

type statusResponse struct {
	TotalSongs     int    `json:"total_songs"`
	IndexSize      int    `json:"index_size"`
	Encoder        string `json:"encoder"`
	IndexUpdatedAt string `json:"index_updated_at"`
	EncoderOK      bool   `json:"encoder_ok"`
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		TotalSongs: h.engine.Catalog().Len(),
		IndexSize:  h.index.Len(),
		EncoderOK:  h.encoder == nil || h.encoder.IsHealthy(r.Context()),
	}
	if h.index.Len() > 0 {
		resp.Encoder = h.index.EncoderName()
		resp.IndexUpdatedAt = h.index.BuiltAt().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status     string `json:"status"`
	TotalSongs int    `json:"total_songs"`
	CSVLoaded  bool   `json:"csv_loaded"`
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	n := h.engine.Catalog().Len()
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", TotalSongs: n, CSVLoaded: n > 0})
}

// parseLimit reads an optional limit parameter. Negative values are treated
// as zero and large ones are capped at maxLimit.
func parseLimit(w http.ResponseWriter, s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return max(0, min(n, maxLimit)), true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
