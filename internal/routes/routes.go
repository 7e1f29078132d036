package routes

import (
	"net/http"
	"path/filepath"

	"github.com/momager/momager-core/internal/app"
	"github.com/momager/momager-core/internal/handler"
	"github.com/momager/momager-core/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	pages := handler.NewPageHandler(app.AuthService, app.SessionService, app.ContentService, app.Resolver)
	seo := handler.NewSEOHandler(app.SitemapService)
	auth := handler.NewAuthHandler(
		app.AuthService,
		app.SessionService,
		app.UserService,
		app.PasswordResetService,
		app.VerificationService,
	)
	weather := handler.NewWeatherHandler(app.WeatherService)
	email := handler.NewEmailHandler()

	mux := http.NewServeMux()

	// ============================================================================
	// STATIC CLIENT FILES
	// ============================================================================

	client := http.FileServer(http.Dir(app.Cfg.ClientPath))
	mux.Handle("GET /js/", client)
	mux.Handle("GET /css/", client)
	mux.Handle("GET /assets/", client)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(app.Cfg.ClientPath, "assets", "logo.png"))
	})

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// ============================================================================
	// PLUMBING (JSON API)
	// ============================================================================

	rateLimit := middleware.RateLimit(app.AuthLimiter, app.ClientIP)

	mux.HandleFunc("GET /plumbing/auth", auth.Index)
	mux.HandleFunc("POST /plumbing/auth/session", rateLimit(auth.Login))
	mux.HandleFunc("PUT /plumbing/auth/session", auth.RefreshSession)
	mux.HandleFunc("DELETE /plumbing/auth/session", auth.Logout)
	mux.HandleFunc("PUT /plumbing/auth/sign-up", rateLimit(auth.SignUp))
	mux.HandleFunc("PUT /plumbing/auth/forgot-password", rateLimit(auth.RequestPasswordReset))
	mux.HandleFunc("POST /plumbing/auth/forgot-password", rateLimit(auth.ForgotPassword))
	mux.HandleFunc("POST /plumbing/auth/user", auth.UpdateUser)
	mux.HandleFunc("POST /plumbing/auth/verify", rateLimit(auth.SendVerification))
	mux.HandleFunc("GET /plumbing/auth/verify/{key}", auth.Verify)

	mux.HandleFunc("GET /plumbing/weather", weather.Lookup)

	mux.HandleFunc("GET /plumbing/email", email.Index)
	mux.HandleFunc("GET /plumbing/email/availability", email.Availability)

	// ============================================================================
	// PAGES
	// ============================================================================

	mux.HandleFunc("GET /{$}", pages.Home)
	mux.HandleFunc("GET /sign-in", middleware.RequireGuest(pages.SignIn))
	mux.HandleFunc("GET /sign-up", middleware.RequireGuest(pages.SignUp))
	mux.HandleFunc("POST /sign-out", pages.SignOut)
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(pages.Dashboard))
	mux.HandleFunc("GET /skill/{topic}", pages.Skill)
	mux.HandleFunc("GET /skill/{topic}/{article}", pages.Article)

	// 404
	mux.HandleFunc("/{path...}", pages.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.NonceMiddleware,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.SessionService, app.UserService),
		middleware.WithURLPath,
	)
}
