package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
