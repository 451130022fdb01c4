package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fieldserve/nameplate-cli/internal/store"
)

// openHistory opens the configured scan-history store, or returns nil when
// recording is disabled.
func openHistory(ctx context.Context) (store.Store, error) {
	switch cfg.History.Driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("history: unknown driver %q", cfg.History.Driver)
	}
}
