package controllers

import (
	"context"
	"net/http"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/pkg/config"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ArenaMarket-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports whether the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ArenaMarket-Env", cfg.App.Env)

		checks := map[string]pinger{
			"database": database,
			"redis":    cache,
		}
		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
