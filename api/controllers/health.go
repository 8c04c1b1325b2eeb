package controllers

import (
	"net/http"

	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/pkg/logger"
	pkgredis "github.com/busybiz/busybiz-backend/pkg/redis"
)

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies downstream connectivity before reporting ready.
func HealthReady(pingers map[string]pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				if logg != nil {
					ctx = logg.WithField(ctx, "dependency", name)
					logg.Error(ctx, "readiness check failed", err)
				}
				responses.WriteErrorBody(w, http.StatusServiceUnavailable, responses.ErrorBody{
					Error: "not ready",
				})
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
