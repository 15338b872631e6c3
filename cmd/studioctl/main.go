// Command studioctl administers an AutoStudio instance from the shell. It
// reads the same configuration and state backend as the server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bilgisen/autostudio/internal/app"
	"github.com/bilgisen/autostudio/internal/config"
	"github.com/bilgisen/autostudio/internal/feed"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/state"
)

// trendFeed lists daily trending searches.
type trendFeed interface {
	DailyTrends(ctx context.Context, geo string) ([]models.Trend, error)
}

// env is what the commands operate on.
type env struct {
	state   *state.AppState
	members *members.Store
	feed    trendFeed
	close   func() error
}

type opener func(ctx context.Context) (*env, error)

func openFromConfig(ctx context.Context) (*env, error) {
	cfg := config.Load()

	backend, closeFn, err := app.OpenBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.StoreBackend, err)
	}
	st := state.New(backend)
	st.Load(ctx)

	return &env{
		state:   st,
		members: members.NewStore(st, members.WithWriteDelay(0)),
		feed:    feed.NewProcessor(cfg.TrendsFeedURL),
		close:   closeFn,
	}, nil
}

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		os.Exit(1)
	}
}
