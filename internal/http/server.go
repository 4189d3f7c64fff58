package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tracker/internal/cache"
	"tracker/internal/log"
	"tracker/internal/middleware/ratelimit"
	"tracker/internal/middleware/security"
	"tracker/internal/middleware/trace"
	"tracker/internal/services"
)

// Services are the use cases the API exposes. Auth may be nil, which
// disables the auth routes and token checks.
type Services struct {
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Analytics    *services.AnalyticsService
	Auth         *services.AuthService
}

type Options struct {
	Logger *log.Logger
	// Registry receives the HTTP metrics and backs /metrics. A private
	// registry is created when nil.
	Registry  *prometheus.Registry
	RateLimit ratelimit.Config
	// Cache, when set, sweeps the rate limiter's idle clients.
	Cache *cache.Manager
	// Ready backs /readyz, usually the store's Ping.
	Ready func(ctx context.Context) error
	// TrustedProxies are CIDRs whose forwarding headers are honoured.
	TrustedProxies []string
}

type Server struct {
	http.Server
	svc      Services
	logger   *log.Logger
	detector *security.Detector
	limiter  *ratelimit.Limiter
	registry *prometheus.Registry
	ready    func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}
	if opts.RateLimit.RequestsPerMinute <= 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		svc:      svc,
		logger:   logger.WithComponent(log.ComponentHTTP),
		detector: security.NewDetector(logger, reg),
		limiter:  ratelimit.NewLimiter(opts.RateLimit, reg),
		registry: reg,
		ready:    opts.Ready,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	if opts.Cache != nil {
		opts.Cache.Register(s.limiter.Cache())
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(logger *log.Logger) http.Handler {
	router := mux.NewRouter()

	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, logger, s.registry)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})
	chain := []mux.MiddlewareFunc{tracer.Middleware, s.detector.Middleware, headers.Middleware, limit}
	router.Use(chain...)

	// mux skips middleware for unmatched requests
	wrap := func(h http.Handler) http.Handler {
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		return h
	}
	router.NotFoundHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	}))
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed").Write(w)
	}))

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if s.svc.Auth != nil {
		api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
		api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	}

	protected := api.NewRoute().Subrouter()
	if s.svc.Auth != nil {
		protected.Use(s.requireToken)
	}

	protected.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	protected.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	protected.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	protected.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	protected.HandleFunc("/budgets/{month:[0-9]{4}-[0-9]{2}}", s.handleListBudgets).Methods(http.MethodGet)
	protected.HandleFunc("/budgets/{month:[0-9]{4}-[0-9]{2}}/progress", s.handleBudgetProgress).Methods(http.MethodGet)
	protected.HandleFunc("/budgets/{id:[0-9]+}", s.handleUpdateBudget).Methods(http.MethodPut)
	protected.HandleFunc("/budgets/{id:[0-9]+}", s.handleDeleteBudget).Methods(http.MethodDelete)

	protected.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	protected.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/chart", s.handleChart).Methods(http.MethodGet)
	protected.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	protected.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	protected.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	return router
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
