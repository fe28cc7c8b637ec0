package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvpgiftcenter/giftshop-backend/api/responses"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/config"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/redis"
)

const readyCheckTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GiftShop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GiftShop-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true
		ping := func(name string, p interface {
			Ping(context.Context) error
		}) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				ready = false
				if logg != nil {
					logg.Error(ctx, "readiness check failed for "+name, err)
				}
				return
			}
			checks[name] = "up"
		}

		ping("database", database)
		ping("redis", cache)

		if !ready {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
