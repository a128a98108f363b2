package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Sternrassler/paapi-product-cache/pkg/amazon"
	"github.com/Sternrassler/paapi-product-cache/pkg/cache"
	"github.com/Sternrassler/paapi-product-cache/pkg/catalog"
	"github.com/Sternrassler/paapi-product-cache/pkg/client"
	"github.com/Sternrassler/paapi-product-cache/pkg/metrics"
)

// readyTimeout bounds the store ping behind /ready.
const readyTimeout = 2 * time.Second

// statusClientClosedRequest is logged when the caller went away before the
// response was ready (nginx convention).
const statusClientClosedRequest = 499

// Pinger reports whether the shared store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// server holds the HTTP handlers' dependencies.
type server struct {
	catalog *catalog.Service
	store   Pinger
}

// newRouter wires routes and middleware.
func newRouter(svc *catalog.Service, store Pinger, logger zerolog.Logger) http.Handler {
	s := &server{catalog: svc, store: store}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/ready", s.readyHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/products", func(r chi.Router) {
		r.Get("/search", s.searchHandler)
		r.Get("/"+amazon.Source+"/{id}", s.amazonProductHandler)
		r.Get("/{source}/{id}", s.productHandler)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Readiness check failed")
		http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// GET /products/search?q=iphone+15
func (s *server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "query parameter q is required"})
		return
	}

	result, err := s.catalog.SearchProducts(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// GET /products/amazon/{id}
func (s *server) amazonProductHandler(w http.ResponseWriter, r *http.Request) {
	s.writeProduct(w, r, amazon.Source, chi.URLParam(r, "id"))
}

// GET /products/{source}/{id}
func (s *server) productHandler(w http.ResponseWriter, r *http.Request) {
	s.writeProduct(w, r, chi.URLParam(r, "source"), chi.URLParam(r, "id"))
}

func (s *server) writeProduct(w http.ResponseWriter, r *http.Request, source, id string) {
	product, err := s.catalog.GetProductByID(r.Context(), source, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// A nil product encodes as null.
	writeJSON(w, r, http.StatusOK, product)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		invalidSource *catalog.InvalidSourceError
		upstream      *client.UpstreamError
		store         *cache.StoreError
	)
	// Context errors first: a store or upstream call that failed because the
	// request ran out of time is a timeout, not an outage.
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.As(err, &invalidSource):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &store):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Int("status", status).Msg("Request failed")

	writeJSON(w, r, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to write response")
	}
}
