package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/busybiz/busybiz-backend/pkg/config"
)

// CORS applies the configured allowed-origin policy. The contact form and
// checkout are called directly from the browser, so the site origins must be
// listed.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
