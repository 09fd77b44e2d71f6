package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lostfound-api/internal/application/category"
	"github.com/lostfound-api/internal/application/claim"
	"github.com/lostfound-api/internal/application/dashboard"
	fileapp "github.com/lostfound-api/internal/application/file"
	"github.com/lostfound-api/internal/application/item"
	"github.com/lostfound-api/internal/application/notification"
	"github.com/lostfound-api/internal/application/session"
	"github.com/lostfound-api/internal/application/user"
	"github.com/lostfound-api/internal/config"
	"github.com/lostfound-api/internal/domain"
	jwtinfra "github.com/lostfound-api/internal/infrastructure/jwt"
	"github.com/lostfound-api/internal/transport/http/handler"
	appmiddleware "github.com/lostfound-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	ItemRepo         ItemRepository
	ClaimRepo        ClaimRepository
	NotificationRepo NotificationRepository
	CategoryRepo     CategoryRepository
	ImageRepo        ImageRepository
	S3Store          ObjectStore
	Mailer           Mailer
	Publisher        EventPublisher
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	// Service construction order matters: the notification service feeds the
	// dashboard's unread counter, and the dashboard service is the projection
	// cache that item and claim mutations invalidate.
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		Publisher:        deps.Publisher,
	})
	dashboardSvc := dashboard.NewService(dashboard.ServiceDeps{
		ItemRepo:        deps.ItemRepo,
		ClaimRepo:       deps.ClaimRepo,
		NotificationSvc: notifSvc,
		CacheTTL:        cfg.ProjectionCacheTTL,
	})
	claimSvc := claim.NewService(claim.ServiceDeps{
		ItemRepo:        deps.ItemRepo,
		ClaimRepo:       deps.ClaimRepo,
		NotificationSvc: notifSvc,
		Mailer:          deps.Mailer,
		ProjectionCache: dashboardSvc,
	})
	itemSvc := item.NewService(item.ServiceDeps{
		ItemRepo:        deps.ItemRepo,
		ClaimRepo:       deps.ClaimRepo,
		ProjectionCache: dashboardSvc,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	categorySvc := category.NewService(deps.CategoryRepo)
	fileSvc := fileapp.NewService(deps.S3Store, deps.ImageRepo)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc, sessionSvc)
	itemH := handler.NewItemHandler(itemSvc)
	claimH := handler.NewClaimHandler(claimSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	fileH := handler.NewFileHandler(fileSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/items", itemH.List)
		r.Get("/items/{id}", itemH.Get)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/items/mine", itemH.ListMine)
			r.Post("/items", itemH.Create)
			r.Put("/items/{id}", itemH.Update)
			r.Delete("/items/{id}", itemH.Delete)

			r.Get("/items/{id}/claims", claimH.ListForItem)
			r.With(sensitiveRL.Limit).Post("/items/{id}/claims", claimH.Submit)
			r.Post("/items/{id}/reunite", claimH.Reunite)
			r.Get("/claims", claimH.ListMine)
			r.Put("/claims/{id}", claimH.Respond)
			r.Delete("/claims/{id}", claimH.Remove)

			r.Get("/dashboard", dashboardH.Get)

			r.Get("/notifications", notifH.List)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
			r.Put("/notifications/read", notifH.MarkAllRead)

			r.Post("/files", fileH.Upload)
			r.Delete("/files/{id}", fileH.Delete)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Delete("/users/{id}", userH.Delete)
			r.Put("/users/me/password", userH.ChangePassword)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Put("/users/{id}/role", userH.SetRole)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
