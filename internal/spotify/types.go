package spotify

// Track is a trending track as served to clients.
type Track struct {
	Name    string `json:"name"`
	Artists string `json:"artists"`
	Image   string `json:"image"`
	URL     string `json:"url"`
}

// playlistPage is the raw response of GET /v1/playlists/{id}/tracks.
type playlistPage struct {
	Items []playlistItem `json:"items"`
}

type playlistItem struct {
	Track *apiTrack `json:"track"`
}

type apiTrack struct {
	Name         *string           `json:"name"`
	IsLocal      bool              `json:"is_local"`
	Artists      []apiArtist       `json:"artists"`
	Album        apiAlbum          `json:"album"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbum struct {
	Images []apiImage `json:"images"`
}

type apiImage struct {
	URL string `json:"url"`
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
