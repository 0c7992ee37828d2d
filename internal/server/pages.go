package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/preeyankakc037/dufy/internal/search"
	"github.com/preeyankakc037/dufy/internal/spotify"
)

const (
	discoverSize  = 30
	topChartsSize = 50
)

//go:embed templates/*.html
var templateFS embed.FS

// pageSet holds one template per page, each parsed together with the layout.
type pageSet map[string]*template.Template

func loadPages() pageSet {
	names := []string{"songs.html", "genre.html", "trending.html", "favourites.html", "playlists.html", "signup.html"}
	ps := make(pageSet, len(names))
	for _, name := range names {
		ps[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return ps
}

type pageData struct {
	Title  string
	Songs  []search.Item
	Genres []string
	Tracks []spotify.Track
}

func (h *Handlers) render(w http.ResponseWriter, name string, data pageData) {
	tmpl, ok := h.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.WithError(err).WithField("page", name).Error("Could not render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handlers) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	h.render(w, "songs.html", pageData{Title: "Discover", Songs: h.engine.Sample(discoverSize)})
}

func (h *Handlers) HandleTopCharts(w http.ResponseWriter, r *http.Request) {
	h.render(w, "songs.html", pageData{Title: "Top Charts", Songs: h.engine.Sample(topChartsSize)})
}

func (h *Handlers) HandleGenres(w http.ResponseWriter, r *http.Request) {
	h.render(w, "genre.html", pageData{Title: "Genres", Genres: h.engine.Catalog().Genres()})
}

func (h *Handlers) HandleTrendingPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Trending"}
	if tracks, ok := h.fetchTrending(r); ok {
		data.Tracks = tracks
	} else {
		data.Songs = h.engine.Sample(trendingSample)
	}
	h.render(w, "trending.html", data)
}

func (h *Handlers) staticPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, name, pageData{Title: title})
	}
}
