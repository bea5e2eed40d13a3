package rest

import (
	"net/http"
	"strings"

	"crosstalk/application/commands/bus"
	commands_handlers "crosstalk/application/commands/handlers"
	querybus "crosstalk/application/queries/bus"
	"crosstalk/interfaces/http/rest/handlers"
	"crosstalk/interfaces/http/rest/middleware"
	v1 "crosstalk/interfaces/http/rest/v1"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	buildHandler *commands_handlers.BuildNetworkHandler
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	buildHandler *commands_handlers.BuildNetworkHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		buildHandler: buildHandler,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.crosstalk.bio"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes (legacy, redirects to v2)
	router.Mount("/api/v1", v1.NewRouter())

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		// Apply authentication middleware for API routes
		r.Use(middleware.Authenticate())

		r.Route("/networks", func(r chi.Router) {
			networkHandler := handlers.NewNetworkHandler(rt.commandBus, rt.queryBus, rt.buildHandler, rt.logger)
			r.Post("/", networkHandler.BuildNetwork)
			r.Get("/", networkHandler.ListNetworks)
			r.Get("/{networkID}", networkHandler.GetNetwork)
			r.Put("/{networkID}/clusters", networkHandler.RenameClusters)
			r.Delete("/{networkID}", networkHandler.DeleteNetwork)
			r.Post("/bulk-delete", networkHandler.BulkDeleteNetworks)

			// Derived views over a built network
			matrixHandler := handlers.NewMatrixHandler(rt.queryBus, rt.logger)
			r.Get("/{networkID}/matrix", matrixHandler.GetMatrix)

			graphHandler := handlers.NewGraphHandler(rt.queryBus, rt.logger)
			r.Get("/{networkID}/cluster-graph", graphHandler.GetClusterGraph)
			r.Get("/{networkID}/gene-graph", graphHandler.GetGeneGraph)

			collateHandler := handlers.NewCollateHandler(rt.queryBus, rt.logger)
			r.Get("/{networkID}/collation", collateHandler.CollateItems)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	// Check dependencies (database, etc.)
	// For now, always return ready
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.Contains(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")

		next.ServeHTTP(w, r)
	})
}
