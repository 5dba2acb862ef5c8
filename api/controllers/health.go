package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/pkg/config"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

const readyCheckTimeout = 3 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Saku-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing store and reports all failures at once.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Saku-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		var err error
		if dbP != nil {
			if pingErr := dbP.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, fmt.Errorf("database: %w", pingErr))
			}
		}
		if redisP != nil {
			if pingErr := redisP.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, fmt.Errorf("redis: %w", pingErr))
			}
		}

		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
