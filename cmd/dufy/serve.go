package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/preeyankakc037/dufy/internal/server"
	"github.com/preeyankakc037/dufy/internal/spotify"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog, build the index and serve HTTP (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := e.loadCatalog()
	enc, probe := e.encoder()
	eng, ix := e.engine(ctx, cat, enc)

	var trending spotify.Source
	if e.cfg.SpotifyEnabled() {
		trending = spotify.NewCachedSource(spotify.NewClient(spotify.Config{
			ClientID:     e.cfg.SpotifyClientID,
			ClientSecret: e.cfg.SpotifyClientSecret,
			PlaylistID:   e.cfg.SpotifyPlaylistID,
			Market:       e.cfg.SpotifyMarket,
		}), e.cfg.TrendingCacheTTL)
	} else {
		e.log.Info("Spotify credentials not set, trending serves catalog samples")
	}

	srv := server.New(server.Options{
		Port:           e.cfg.Port,
		StaticDir:      e.cfg.StaticDir,
		AllowedOrigins: e.cfg.AllowedOrigins,
		Engine:         eng,
		Index:          ix,
		Trending:       trending,
		Encoder:        probe,
		Log:            e.log,
	})

	errc := make(chan error, 1)
	go func() {
		e.log.Infof("Server listening on http://localhost:%s", e.cfg.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	e.log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.WithError(err).Error("Server shutdown error")
		return err
	}
	e.log.Info("Goodbye")
	return nil
}
