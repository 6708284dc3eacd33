package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techinsights/kbsite/config"
	"github.com/techinsights/kbsite/internal/adapters/devauth"
	"github.com/techinsights/kbsite/internal/adapters/mailer"
	"github.com/techinsights/kbsite/internal/adapters/oidc"
	redisadapter "github.com/techinsights/kbsite/internal/adapters/redis"
	"github.com/techinsights/kbsite/internal/authz"
	"github.com/techinsights/kbsite/internal/data"
	httpx "github.com/techinsights/kbsite/internal/http"
	"github.com/techinsights/kbsite/internal/observability/statsd"
	"github.com/techinsights/kbsite/internal/ports"
	"github.com/techinsights/kbsite/internal/service"
)

// roleCheckTimeout bounds each authorization role lookup.
const roleCheckTimeout = 5 * time.Second

// AppStack bundles the wired services behind the HTTP surface.
type AppStack struct {
	Auth       *service.AuthService
	Roles      *service.RoleService
	Articles   *service.ArticleService
	Categories *service.CategoryService
	Newsletter *service.NewsletterService
	Analytics  *service.AnalyticsService
	Registry   *authz.Registry
	Metrics    *statsd.Client
}

// StackOptions groups the external connections BuildStack wires together.
type StackOptions struct {
	Config config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// BuildStack wires repositories, adapters, and services from configuration.
func BuildStack(opts StackOptions) (*AppStack, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd client: %w", err)
	}

	provider, err := buildAuthProvider(cfg.Auth)
	if err != nil {
		return nil, err
	}

	sessions := redisadapter.NewSessionStoreWithPrefix(opts.Redis, cfg.Redis.SessionKeyPrefix)

	profiles := data.NewProfileRepo(opts.DB)
	roles := data.NewRoleRepo(opts.DB)
	articles := data.NewArticleRepo(opts.DB)
	categories := data.NewCategoryRepo(opts.DB)
	subscribers := data.NewSubscriberRepo(opts.DB)
	engagement := data.NewEngagementRepo(opts.DB)
	analytics := data.NewAnalyticsRepo(opts.DB)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Profiles: profiles,
		Roles:    roles,
		Logger:   logger,
	})
	roleSvc := service.NewRoleService(service.RoleServiceOptions{
		Roles:    roles,
		Profiles: profiles,
		Metrics:  metrics,
		Logger:   logger,
	})
	registry := authz.NewRegistry(authz.RegistryOptions{
		Checker:      roleSvc,
		CheckTimeout: roleCheckTimeout,
		Logger:       logger,
	})

	var confirmationMailer ports.Mailer
	if cfg.Newsletter.MailerEnabled() {
		client, mailerErr := mailer.NewClient(mailer.Config{
			EndpointURL: cfg.Newsletter.MailerEndpointURL,
			AuthToken:   cfg.Newsletter.MailerAuthToken,
			Timeout:     cfg.Newsletter.MailerTimeout,
			RetryLimit:  cfg.Newsletter.MailerRetryLimit,
		})
		if mailerErr != nil {
			return nil, fmt.Errorf("mailer client: %w", mailerErr)
		}
		confirmationMailer = client
	}

	return &AppStack{
		Auth:  authSvc,
		Roles: roleSvc,
		Articles: service.NewArticleService(service.ArticleServiceOptions{
			Articles:   articles,
			Engagement: engagement,
			Logger:     logger,
		}),
		Categories: service.NewCategoryService(service.CategoryServiceOptions{
			Categories: categories,
		}),
		Newsletter: service.NewNewsletterService(service.NewsletterServiceOptions{
			Subscribers: subscribers,
			Mailer:      confirmationMailer,
			Logger:      logger,
		}),
		Analytics: service.NewAnalyticsService(service.AnalyticsServiceOptions{
			Analytics: analytics,
		}),
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// Router builds the HTTP handler over the stack.
func (s *AppStack) Router(cfg config.HTTPConfig, logger *slog.Logger) http.Handler {
	return httpx.NewRouter(httpx.RouterServices{
		Articles:     s.Articles,
		Categories:   s.Categories,
		Newsletter:   s.Newsletter,
		Users:        s.Roles,
		Analytics:    s.Analytics,
		Auth:         s.Auth,
		Registry:     s.Registry,
		CookieDomain: cfg.CookieDomain,
		Logger:       logger,
	})
}

// buildAuthProvider selects the identity provider implementation by mode.
//
//nolint:ireturn // the caller only needs the port, not the concrete provider.
func buildAuthProvider(cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		provider, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.DevUserID,
			Email:           cfg.DevEmail,
			Name:            cfg.DevName,
			SessionDuration: cfg.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return provider, nil
	default:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scope:        cfg.Scope,
			DiscoveryURL: cfg.DiscoveryURL,
			LogoutURL:    cfg.LogoutURL,
			Claims: oidc.ClaimMappings{
				Subject: cfg.SubjectClaim,
				Email:   cfg.EmailClaim,
				Name:    cfg.NameClaim,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return provider, nil
	}
}
