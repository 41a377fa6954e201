// main.go
//
// Composition root for the memory game server: config, logging, card images,
// leaderboard store, session store with idle sweeping, and the HTTP server.

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory-match/assets"
	"github.com/robalobadob/memory-match/internal/config"
	"github.com/robalobadob/memory-match/internal/deck"
	"github.com/robalobadob/memory-match/internal/game"
	"github.com/robalobadob/memory-match/internal/httpserver"
	"github.com/robalobadob/memory-match/internal/results"
	"github.com/robalobadob/memory-match/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires everything from config and serves until the listener fails.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	images, err := deck.Load(cfg.CardImagesFile)
	if err != nil {
		return fmt.Errorf("load card images: %w", err)
	}
	if missing := assets.MissingImages(images); len(missing) > 0 {
		log.Warn().Strs("images", missing).Msg("card images missing from the embedded client")
	}

	scores := results.NewMemoryStore()
	if cfg.ScoresDB != "" {
		if scores, err = results.OpenSQLite(cfg.ScoresDB); err != nil {
			return fmt.Errorf("open scores db %s: %w", cfg.ScoresDB, err)
		}
	}
	defer scores.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions := store.NewMemoryStore()
	go sweepSessions(ctx, sessions, cfg.SessionTTL)

	srv := httpserver.New(httpserver.Deps{
		Sessions:     sessions,
		Results:      scores,
		Images:       images,
		FlipDuration: game.ClampFlipDuration(cfg.FlipDuration()),
		Clock:        game.SystemClock{},
		Secret:       []byte(cfg.SessionSecret),
		TokenTTL:     cfg.SessionTTL,
		ClientOrigin: cfg.ClientOrigin,
		Web:          assets.Client(),
		DailySalt:    cfg.DailySalt,
	})

	port := strconv.Itoa(cfg.Port)
	log.Info().Str("port", port).Int("pairs", len(images)).Msg("starting memory server")
	return srv.Start(":" + port)
}

// sweepSessions closes sessions idle for longer than ttl.
func sweepSessions(ctx context.Context, sessions store.Store, ttl time.Duration) {
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := sessions.Sweep(ctx, now.Add(-ttl)); n > 0 {
				log.Info().Int("swept", n).Int("live", sessions.Len()).Msg("session swept")
			}
		}
	}
}
