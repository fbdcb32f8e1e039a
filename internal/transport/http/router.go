package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/otp"
	"github.com/go-auth-api/internal/application/user"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-api/internal/transport/http/middleware"
)

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

	// 5 requests/second, burst of 10, applied to the credential-guessing surface.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		CredentialRepo: deps.CredentialRepo,
		Mailer:         deps.Mailer,
		SMSSender:      deps.SMSSender,
		CodeLength:     cfg.OtpLength,
		ExpiryMin:      cfg.OtpExpiryMin,
		ExpiryMax:      cfg.OtpExpiryMax,
		ResendWindow:   cfg.OtpResendWindow,
		Clock:          deps.Clock,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		CredentialRepo: deps.CredentialRepo,
		UserRepo:       deps.UserRepo,
		RoleRepo:       deps.RoleRepo,
		Ledger:         deps.RefreshTokenRepo,
		Otp:            otpSvc,
		Codec:          deps.JWTProvider,
		Clock:          deps.Clock,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:       deps.UserRepo,
		CredentialRepo: deps.CredentialRepo,
		RoleRepo:       deps.RoleRepo,
		Otp:            otpSvc,
		Clock:          deps.Clock,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOtp)
		r.With(sensitiveRL.Limit).Post("/auth/resend-otp", authH.ResendOtp)
		r.Post("/auth/refresh-token", authH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/get-profile", userH.GetProfile)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/create-user", userH.Create)
				r.Put("/users/{id}/suspension", userH.ToggleSuspension)
			})
		})
	})

	return r
}
