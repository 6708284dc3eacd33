package httpx

import (
	"log/slog"
	"net/http"

	"github.com/techinsights/kbsite/internal/authz"
	"github.com/techinsights/kbsite/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Articles   *service.ArticleService
	Categories *service.CategoryService
	Newsletter *service.NewsletterService
	Users      *service.RoleService
	Analytics  *service.AnalyticsService
	Auth       AuthServiceInterface
	Registry   *authz.Registry

	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router. The public surface is
// reachable without a session; the admin surface sits behind the authorization
// registry so every request resolves the caller's role before content renders.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	articleHandlers := &ArticleHandlers{Svc: services.Articles}
	categoryHandlers := &CategoryHandlers{Svc: services.Categories}
	newsletterHandlers := &NewsletterHandlers{Svc: services.Newsletter}
	userHandlers := &UserHandlers{Svc: services.Users}
	analyticsHandlers := &AnalyticsHandlers{Svc: services.Analytics}

	registerPublicRoutes(mux, publicRoutes{
		Articles:   articleHandlers,
		Categories: categoryHandlers,
		Newsletter: newsletterHandlers,
		Auth:       services.Auth,
	})

	adminWrap := adminMiddleware(services.Auth, services.Registry)
	registerAdminRoutes(mux, adminRoutes{
		Articles:   articleHandlers,
		Categories: categoryHandlers,
		Newsletter: newsletterHandlers,
		Users:      userHandlers,
		Analytics:  analyticsHandlers,
		Middleware: adminWrap,
	})

	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:          services.Auth,
			Registry:     services.Registry,
			CookieDomain: services.CookieDomain,
			Logger:       logger,
		}
		registerAuthRoutes(mux, authHandlers)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Recover(logger)(Logging(logger)(mux))
}

// adminMiddleware returns the admin route wrapper; a no-op when auth is not
// configured so the router stays testable without a full auth stack.
func adminMiddleware(auth AuthServiceInterface, registry *authz.Registry) func(http.Handler) http.Handler {
	if auth == nil || registry == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireAdmin(auth, registry)
}

type publicRoutes struct {
	Articles   *ArticleHandlers
	Categories *CategoryHandlers
	Newsletter *NewsletterHandlers
	Auth       AuthServiceInterface
}

func registerPublicRoutes(mux *http.ServeMux, cfg publicRoutes) {
	// Reads work anonymously but pick up the session when present so the
	// per-user liked flag can be reported.
	withSession := func(h http.HandlerFunc) http.Handler {
		if cfg.Auth != nil {
			return OptionalAuth(cfg.Auth)(h)
		}
		return h
	}
	requireSession := func(h http.HandlerFunc) http.Handler {
		if cfg.Auth != nil {
			return RequireAuth(cfg.Auth)(h)
		}
		return h
	}

	mux.Handle("GET /api/articles", withSession(cfg.Articles.PublicList))
	mux.Handle("GET /api/articles/{id}", withSession(cfg.Articles.PublicGet))
	mux.Handle("POST /api/articles/{id}/like", requireSession(cfg.Articles.Like))

	mux.HandleFunc("GET /api/categories", cfg.Categories.PublicList)

	mux.HandleFunc("POST /api/newsletter/subscribe", cfg.Newsletter.Subscribe)
	mux.HandleFunc("POST /api/newsletter/unsubscribe", cfg.Newsletter.Unsubscribe)
}

type adminRoutes struct {
	Articles   *ArticleHandlers
	Categories *CategoryHandlers
	Newsletter *NewsletterHandlers
	Users      *UserHandlers
	Analytics  *AnalyticsHandlers
	Middleware func(http.Handler) http.Handler
}

func registerAdminRoutes(mux *http.ServeMux, cfg adminRoutes) {
	registerCRUD(mux, crudRoutes{
		Base:       "/api/admin/articles",
		Create:     cfg.Articles.Create,
		List:       cfg.Articles.List,
		GetByID:    cfg.Articles.GetByID,
		Update:     cfg.Articles.Update,
		Delete:     cfg.Articles.Delete,
		Middleware: cfg.Middleware,
	})

	registerCRUD(mux, crudRoutes{
		Base:       "/api/admin/categories",
		Create:     cfg.Categories.Create,
		List:       cfg.Categories.PublicList,
		GetByID:    cfg.Categories.GetByID,
		Update:     cfg.Categories.Update,
		Delete:     cfg.Categories.Delete,
		Middleware: cfg.Middleware,
	})

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("GET /api/admin/subscribers", wrap(cfg.Newsletter.List))
	mux.Handle("GET /api/admin/users", wrap(cfg.Users.List))
	mux.Handle("PUT /api/admin/users/{id}/role", wrap(cfg.Users.SetRole))
	mux.Handle("GET /api/admin/analytics", wrap(cfg.Analytics.Site))
}

// crudRoutes registers standard CRUD routes for a resource base path, applying Middleware if non-nil.
type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/recheck", h.Recheck)
}
