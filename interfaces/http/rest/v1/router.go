// Package v1 keeps the retired v1 API surface alive long enough for
// old clients to migrate. Every route answers with a permanent
// redirect to its v2 equivalent plus deprecation headers.
package v1

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// NewRouter creates the legacy v1 API router
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.Use(versionHeaders)

	// v1 exposed networks under /signaling; v2 renamed the collection
	v1.PathPrefix("/signaling").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := strings.Replace(r.URL.Path, "/api/v1/signaling", "/api/v2/networks", 1)
		redirect(w, r, target)
	})

	v1.HandleFunc("/health", healthCheck).Methods("GET")

	// Everything else maps one-to-one
	v1.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := strings.Replace(r.URL.Path, "/api/v1", "/api/v2", 1)
		redirect(w, r, target)
	})

	return router
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}

// versionHeaders adds API version and deprecation headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		w.Header().Set("X-API-Sunset-Date", "2026-12-01")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
