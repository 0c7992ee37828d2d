// Package server exposes the recommendation engine over HTTP: a small JSON
// API plus server-rendered pages.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/preeyankakc037/dufy/internal/index"
	"github.com/preeyankakc037/dufy/internal/search"
	"github.com/preeyankakc037/dufy/internal/spotify"
)

// HealthChecker reports whether a remote dependency is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Options struct {
	Port           string
	StaticDir      string
	AllowedOrigins []string

	Engine *search.Engine
	Index  *index.Index
	// Trending may be nil; trending endpoints then serve catalog samples.
	Trending spotify.Source
	// Encoder is probed by /api/status when the index uses a remote model.
	Encoder HealthChecker
	Log     logrus.FieldLogger
}

// New returns an http.Server ready for ListenAndServe.
func New(opts Options) *http.Server {
	return &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	h := NewHandlers(opts)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{modeHeader, requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/recommend", h.HandleRecommend)
		r.Get("/trending", h.HandleTrending)
		r.Get("/similar", h.HandleSimilar)
		r.Get("/status", h.HandleStatus)
	})
	r.Get("/health", h.HandleHealth)

	r.Get("/", h.HandleDiscover)
	r.Get("/discover", h.HandleDiscover)
	r.Get("/genre", h.HandleGenres)
	r.Get("/top-charts", h.HandleTopCharts)
	r.Get("/trending", h.HandleTrendingPage)
	r.Get("/favourites", h.staticPage("favourites.html", "Favourites"))
	r.Get("/playlists", h.staticPage("playlists.html", "Playlists"))
	r.Get("/signup", h.staticPage("signup.html", "Sign up"))

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return r
}
