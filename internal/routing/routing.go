package routing

import (
	"context"
	"net/http"

	"github.com/SystemBuilders/StripeKey/internal/metrics"
	"github.com/SystemBuilders/StripeKey/internal/session"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Routes of the daemon.
const (
	ObjectPath = "/objects/{pool}/{oid:.+}"
	StatPath   = "/stat/{pool}/{oid:.+}"
	LockPath   = "/locks/{pool}/{oid:.+}"
)

// SetupRouting adds all the routes on the http server. A nil gatherer
// leaves /metrics out.
//
// Object names are opaque: routes match the escaped path and paths are never
// cleaned, so "a//b" or "x/../y" reach the handlers as sent.
func SetupRouting(log zerolog.Logger, provider storage.PoolProvider, gatherer prometheus.Gatherer, r *mux.Router) *mux.Router {
	h := &handler{log: log, provider: provider}
	r.SkipClean(true)
	r.UseEncodedPath()
	r.Use(h.requestID)
	r.HandleFunc(ObjectPath, h.makeStoreHandler(remove)).Methods(http.MethodDelete)
	r.HandleFunc(ObjectPath, h.makeStoreHandler(write)).Methods(http.MethodPut)
	r.HandleFunc(StatPath, h.makeStoreHandler(stat)).Methods(http.MethodGet)
	r.HandleFunc(LockPath, h.makeStoreHandler(lockers)).Methods(http.MethodGet)
	r.HandleFunc(LockPath, h.makeStoreHandler(breakLock)).Methods(http.MethodDelete)
	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer)).Methods(http.MethodGet)
	}
	return r
}

type handler struct {
	log      zerolog.Logger
	provider storage.PoolProvider
}

type ctxKey struct{}

// requestID tags the request with the client's request ID, or a new one,
// and echoes it in the response.
func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := session.ParseID(id); err != nil {
			id = session.NewID().String()
		}
		w.Header().Set(RequestIDHeader, id)
		log := h.log.With().Str("request", id).Logger()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
	})
}

func requestLogger(r *http.Request, fallback zerolog.Logger) zerolog.Logger {
	if log, ok := r.Context().Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}
	return fallback
}
