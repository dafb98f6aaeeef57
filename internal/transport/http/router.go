package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/workforce-verify/internal/application/identity"
	"github.com/workforce-verify/internal/application/user"
	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/config"
	"github.com/workforce-verify/internal/domain"
	jwtinfra "github.com/workforce-verify/internal/infrastructure/jwt"
	"github.com/workforce-verify/internal/transport/http/handler"
	appmiddleware "github.com/workforce-verify/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Identities    IdentityDirectory
	Profiles      ProfileRepository
	Verifications VerificationRepository
	Mailer        Mailer
	JWTProvider   *jwtinfra.Provider
	Log           *zap.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	proxies, err := appmiddleware.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		log.Warn("ignoring trusted proxies", zap.Error(err))
		proxies = nil
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.TrustedProxies(proxies))
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Applied to every route that issues or checks a code.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	lookup := identity.Chain{
		identity.DirectoryStrategy{Directory: deps.Identities},
		identity.ProfileStrategy{Profiles: deps.Profiles, Directory: deps.Identities},
	}
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Lookup:      lookup,
		Directory:   deps.Identities,
		Records:     deps.Verifications,
		Profiles:    deps.Profiles,
		Mailer:      deps.Mailer,
		Log:         log.Named("verification"),
		TTL:         cfg.Verification.CodeTTL,
		CodeLength:  cfg.Verification.CodeLength,
		ProductName: cfg.Verification.ProductName,
	})
	userSvc := user.NewService(user.ServiceDeps{
		Lookup:     lookup,
		Identities: deps.Identities,
		Profiles:   deps.Profiles,
		Issuer:     verificationSvc,
		Log:        log.Named("user"),
	})

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(verificationSvc)
	userH := handler.NewUserHandler(userSvc)
	adminH := handler.NewAdminHandler(verificationSvc, deps.Mailer, cfg.Verification.ProductName)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", userH.Register)
		r.With(sensitiveRL.Limit).Post("/verify/issue", verifyH.Issue)
		r.With(sensitiveRL.Limit).Post("/verify/validate", verifyH.Validate)

		// ── Admin routes ─────────────────────────────────────────────────────
		if deps.JWTProvider == nil {
			log.Warn("JWT keys unavailable, admin routes disabled")
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/admin/verifications/{userID}", adminH.VerificationStatus)
			r.Post("/admin/test-email", adminH.TestEmail)
		})
	})

	return r
}
