package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/admin-session/internal/api/http/handler"
	"github.com/dtroode/admin-session/internal/api/http/middleware"
	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

// Router wires the session endpoints and their middleware.
type Router struct {
	sessionService handler.SessionService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	cookie         model.CookiePolicy
	requestTimeout time.Duration
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	sessionService handler.SessionService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	cookie model.CookiePolicy,
	requestTimeout time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		sessionService: sessionService,
		tokenService:   tokenService,
		contextManager: contextManager,
		cookie:         cookie,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Register builds the chi mux.
//
//	POST /users/login    credentials → tokens + refresh cookie
//	GET  /users/logout   bearer + refresh cookie, roles ADMIN|MANAGER|GUEST
//	POST /users/reissue  refresh cookie → access token
//	GET  /users/me       bearer
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)
	sessionHandler := handler.NewSession(r.sessionService, r.contextManager, r.cookie, r.logger)

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(logging.Handle)
	mux.Use(chimiddleware.Recoverer)
	if r.requestTimeout > 0 {
		mux.Use(chimiddleware.Timeout(r.requestTimeout))
	}

	mux.Route("/users", func(users chi.Router) {
		users.Post("/login", sessionHandler.Login)
		users.Post("/reissue", sessionHandler.Reissue)

		users.Group(func(protected chi.Router) {
			protected.Use(authenticate.Handle)

			protected.With(middleware.RequireRoles(r.contextManager, model.RoleAdmin, model.RoleManager, model.RoleGuest)).
				Get("/logout", sessionHandler.Logout)
			protected.Get("/me", sessionHandler.Me)
		})
	})

	return mux
}
