package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hearthstone-labs/crm/internal/apierr"
	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/hearthstone-labs/crm/internal/logging"
	"github.com/hearthstone-labs/crm/internal/schema"
	"github.com/hearthstone-labs/crm/internal/services/crm"
	"github.com/hearthstone-labs/crm/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// RouterOptions controls the construction of the CRM HTTP router.
// Clients, Transactions, Authenticator and Validator are required; the rest is optional.
type RouterOptions struct {
	Clients       ResourceService[models.Client, crm.ClientInput]
	Transactions  ResourceService[models.Transaction, crm.TransactionInput]
	Authenticator auth.Authenticator
	Validator     *schema.Validator
	Logger        *logrus.Logger
	Metrics       *telemetry.Metrics
	CORSOptions   *cors.Options
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// CORSOptionsFor returns the default policy with origins replaced when any are given.
func CORSOptionsFor(origins []string) cors.Options {
	opts := DefaultCORSOptions()
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	}
	return opts
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, health and
// metrics endpoints, and the resource routes under APIPrefix.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	gates := Gates{Authenticator: opts.Authenticator, Validator: opts.Validator}
	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler)
		MountResource(r, "/clients", opts.Clients, ResourceSchemas{Create: schema.ClientCreate, Update: schema.ClientUpdate}, gates)
		MountResource(r, "/transactions", opts.Transactions, ResourceSchemas{Create: schema.TransactionCreate, Update: schema.TransactionUpdate}, gates)
	})

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	return r
}
