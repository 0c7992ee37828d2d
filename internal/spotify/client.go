// Package spotify fetches trending tracks from a public Spotify playlist.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIBase  = "https://api.spotify.com"

	// PlaceholderImage is used for tracks whose album has no artwork.
	PlaceholderImage = "https://via.placeholder.com/300?text=No+Image"

	playlistLimit = 50
)

// ErrNotConfigured is returned when no client credentials are set.
var ErrNotConfigured = errors.New("spotify credentials not configured")

// Source supplies trending tracks.
type Source interface {
	FetchTrending(ctx context.Context) ([]Track, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	PlaylistID   string
	Market       string
	// TokenURL and APIBase default to the public Spotify endpoints.
	TokenURL string
	APIBase  string
}

type Client struct {
	cfg  Config
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	return &Client{
		cfg: cfg,
		http: resty.NewWithClient(cc.Client(context.Background())).
			SetBaseURL(strings.TrimRight(cfg.APIBase, "/")).
			SetTimeout(15 * time.Second),
	}
}

// FetchTrending returns the tracks of the configured playlist. Empty and
// local-file entries are skipped.
func (c *Client) FetchTrending(ctx context.Context) ([]Track, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}

	var (
		page    playlistPage
		failure apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", c.cfg.PlaylistID).
		SetQueryParams(map[string]string{
			"limit":  fmt.Sprint(playlistLimit),
			"market": c.cfg.Market,
		}).
		SetResult(&page).
		SetError(&failure).
		Get("/v1/playlists/{id}/tracks")
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", c.cfg.PlaylistID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		if failure.Error.Message != "" {
			return nil, fmt.Errorf("fetch playlist %s: status %d: %s", c.cfg.PlaylistID, resp.StatusCode(), failure.Error.Message)
		}
		return nil, fmt.Errorf("fetch playlist %s: status %d", c.cfg.PlaylistID, resp.StatusCode())
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track == nil || item.Track.IsLocal {
			continue
		}
		tracks = append(tracks, convertTrack(*item.Track))
	}
	return tracks, nil
}

func convertTrack(t apiTrack) Track {
	tr := Track{
		Name:  "Unknown Track",
		Image: PlaceholderImage,
		URL:   "#",
	}
	if t.Name != nil {
		tr.Name = *t.Name
	}

	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	tr.Artists = strings.Join(names, ", ")

	if len(t.Album.Images) > 0 {
		tr.Image = t.Album.Images[0].URL
	}
	if u, ok := t.ExternalURLs["spotify"]; ok {
		tr.URL = u
	}
	return tr
}
