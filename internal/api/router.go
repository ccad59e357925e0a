package api

import (
	"net/http"

	"github.com/notedhq/noted/internal/auth"
	apperrors "github.com/notedhq/noted/internal/errors"
	"github.com/notedhq/noted/internal/health"
	"github.com/notedhq/noted/internal/logger"
	"github.com/notedhq/noted/internal/middleware"
	"github.com/notedhq/noted/internal/notes"
	"github.com/notedhq/noted/internal/web"
)

type Router struct {
	mux           *http.ServeMux
	handler       http.Handler
	authHandlers  *auth.Handlers
	authService   *auth.Service
	noteHandlers  *notes.Handlers
	webHandlers   *web.Handlers
	healthHandler *health.Handler
	staticDir     string
}

func NewRouter(
	authHandlers *auth.Handlers,
	authService *auth.Service,
	noteHandlers *notes.Handlers,
	webHandlers *web.Handlers,
	healthHandler *health.Handler,
	staticDir string,
) *Router {
	r := &Router{
		mux:           http.NewServeMux(),
		authHandlers:  authHandlers,
		authService:   authService,
		noteHandlers:  noteHandlers,
		webHandlers:   webHandlers,
		healthHandler: healthHandler,
		staticDir:     staticDir,
	}
	r.setupRoutes()
	r.handler = middleware.Chain(r.mux,
		apperrors.RequestIDMiddleware,
		logger.LoggingMiddleware,
		logger.RecoveryMiddleware,
		middleware.CORS([]string{"*"}),
	)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.healthHandler.HealthHandler)

	// Rendered pages
	r.mux.HandleFunc("GET /{$}", r.webHandlers.Home)
	r.mux.HandleFunc("GET /signup", r.webHandlers.SignupPage)
	r.mux.HandleFunc("GET /login", r.webHandlers.LoginPage)
	r.mux.HandleFunc("GET /dash", r.webHandlers.Dash)
	r.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(r.staticDir))))

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /signup", r.authHandlers.Signup)
	r.mux.HandleFunc("POST /login", r.authHandlers.Login)

	// API routes (auth required)
	r.mux.HandleFunc("POST /verifyToken", r.withAuth(r.authHandlers.VerifyToken))
	r.mux.HandleFunc("POST /getUserData", r.withAuth(r.authHandlers.GetUserData))
	r.mux.HandleFunc("POST /getNotes", r.withAuth(r.noteHandlers.GetNotes))
	r.mux.HandleFunc("POST /createNote", r.withAuth(r.noteHandlers.CreateNote))

	// Everything else renders the 404 page
	r.mux.HandleFunc("/", r.webHandlers.NotFound)
}

func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	guard := auth.Middleware(r.authService)
	return func(w http.ResponseWriter, req *http.Request) {
		guard(http.HandlerFunc(next)).ServeHTTP(w, req)
	}
}
