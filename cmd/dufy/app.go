package main

import (
	"context"
	"path/filepath"

	"github.com/preeyankakc037/dufy/internal/catalog"
	"github.com/preeyankakc037/dufy/internal/config"
	"github.com/preeyankakc037/dufy/internal/embeddings"
	"github.com/preeyankakc037/dufy/internal/index"
	"github.com/preeyankakc037/dufy/internal/search"
	"github.com/preeyankakc037/dufy/internal/server"
)

const indexCacheFile = "index.json"

// encoder returns the configured text encoder and, for remote backends, a
// probe for /api/status.
func (e *env) encoder() (index.Encoder, server.HealthChecker) {
	if e.cfg.EmbedBackend == config.BackendOllama {
		c := embeddings.NewClient(e.cfg.OllamaHost, e.cfg.EmbedModel)
		return c, c
	}
	return index.NewHashedEncoder(e.cfg.IndexDim), nil
}

func (e *env) loadCatalog() *catalog.Catalog {
	return catalog.NewStore(e.cfg.CatalogPath, e.log).Load()
}

func (e *env) buildIndex(ctx context.Context, cat *catalog.Catalog, enc index.Encoder, rebuild bool) (*index.Index, error) {
	return index.Build(ctx, cat, enc, index.BuildOptions{
		CachePath: filepath.Join(e.cfg.DataDir, indexCacheFile),
		Rebuild:   rebuild,
		Log:       e.log,
	})
}

// engine wires the search engine. A failed index build is not fatal: the
// engine then answers free-text queries with fallback samples.
func (e *env) engine(ctx context.Context, cat *catalog.Catalog, enc index.Encoder) (*search.Engine, *index.Index) {
	ix, err := e.buildIndex(ctx, cat, enc, false)
	if err != nil {
		e.log.WithError(err).Warn("Search index unavailable, free-text queries will fall back to random samples")
		ix = nil
	}
	eng := search.New(cat, ix,
		search.WithLogger(e.log),
		search.WithSeed(e.cfg.SearchSeed),
		search.WithDefaultTopK(e.cfg.SearchTopK),
		search.WithFallbackSize(e.cfg.FallbackSize),
	)
	return eng, ix
}
