// Package http exposes the JSON API. Handlers translate between wire
// shapes and the domain, delegate to the services, and map errors to
// status codes; no business rule lives here.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/log"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/rates"
	"bilancio/internal/services"
)

// Deps bundles everything the server needs. Rates may be nil when no
// endpoint is configured; the route then answers 503.
type Deps struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Operations *services.OperationService
	Limits     *services.LimitService
	Goals      *services.GoalService
	Analytics  *services.AnalyticsService
	Rates      *rates.Service
	Logger     *log.Logger
}

type Server struct {
	http.Server
	users      *services.UserService
	categories *services.CategoryService
	operations *services.OperationService
	limits     *services.LimitService
	goals      *services.GoalService
	analytics  *services.AnalyticsService
	rates      *rates.Service
	logger     *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		users:      deps.Users,
		categories: deps.Categories,
		operations: deps.Operations,
		limits:     deps.Limits,
		goals:      deps.Goals,
		analytics:  deps.Analytics,
		rates:      deps.Rates,
		logger:     deps.Logger.WithComponent(log.ComponentHTTP),
	}

	tracer := trace.NewMiddleware(deps.Logger)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /api/operations", s.handleCreateOperation)
	mux.HandleFunc("GET /api/operations", s.handleListOperations)
	mux.HandleFunc("GET /api/operations/{id}", s.handleGetOperation)
	mux.HandleFunc("DELETE /api/operations/{id}", s.handleDeleteOperation)

	mux.HandleFunc("GET /api/limits", s.handleListLimits)
	mux.HandleFunc("GET /api/limits/{id}", s.handleGetLimit)
	mux.HandleFunc("PUT /api/limits/{id}", s.handleUpdateLimit)

	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/fund", s.handleFundGoal)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/rates", s.handleRates)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown stops the HTTP server; safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
