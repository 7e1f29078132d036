package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/component"
	"github.com/momager/momager-core/internal/config"
	"github.com/momager/momager-core/internal/db"
	"github.com/momager/momager-core/internal/middleware"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/service"
	"github.com/momager/momager-core/internal/storage"
)

const (
	authRateLimit       = 10
	authRateLimitWindow = 15 * time.Minute
	weatherFetchTimeout = 10 * time.Second
)

type App struct {
	Cfg                  *config.Config
	DB                   *sqlx.DB
	AuthService          *service.AuthService
	SessionService       *service.SessionService
	UserService          *service.UserService
	PasswordResetService *service.PasswordResetService
	VerificationService  *service.VerificationService
	EmailService         *service.EmailService
	WeatherService       *service.WeatherService
	ContentService       *service.ContentService
	SitemapService       *service.SitemapService
	Resolver             *component.Resolver
	AuthLimiter          middleware.Limiter
	ClientIP             *middleware.ClientIP
}

// Deps are the outside resources an App is built on.
type Deps struct {
	DB        *sqlx.DB
	ContentFS fs.FS
	Weather   service.WeatherFetcher
	Limiter   middleware.Limiter
}

func New(cfg *config.Config) (*App, error) {
	repository.SetTrace(cfg.SQLTrace)

	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	contentFS, err := openContent(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize content storage: %w", err)
	}

	limiter, err := middleware.NewLimiter(cfg.RedisURL, authRateLimit, authRateLimitWindow)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	return Build(cfg, Deps{
		DB:        database,
		ContentFS: contentFS,
		Weather:   service.NewHTTPWeatherFetcher(cfg.WeatherAPIURL, weatherFetchTimeout),
		Limiter:   limiter,
	})
}

// Build wires repositories and services over deps.
func Build(cfg *config.Config, deps Deps) (*App, error) {
	registry := component.DefaultRegistry()
	err := registry.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid component registry: %w", err)
	}

	clientIP, err := middleware.NewClientIP(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepository := repository.NewUserRepository(deps.DB)
	sessionRepository := repository.NewSessionRepository(deps.DB)
	passwordResetRepository := repository.NewPasswordResetRepository(deps.DB)
	verificationKeyRepository := repository.NewVerificationKeyRepository(deps.DB)
	weatherCacheRepository := repository.NewWeatherCacheRepository(deps.DB)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(cfg.CookieKey, cfg.IsProduction())
	sessionService := service.NewSessionService(sessionRepository, userRepository)
	userService := service.NewUserService(userRepository, passwordResetRepository, sessionService)
	passwordResetService := service.NewPasswordResetService(
		userRepository,
		passwordResetRepository,
		userService,
		sessionService,
		emailService,
		cfg.PasswordResetExpiry,
	)
	verificationService := service.NewVerificationService(userRepository, verificationKeyRepository, emailService)
	weatherService := service.NewWeatherService(weatherCacheRepository, deps.Weather, cfg.WeatherCacheTTL)
	contentService := service.NewContentService(deps.ContentFS, cfg.IsProduction())
	sitemapService := service.NewSitemapService(contentService, cfg.AppURL)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(authRateLimit, authRateLimitWindow)
	}

	return &App{
		Cfg:                  cfg,
		DB:                   deps.DB,
		AuthService:          authService,
		SessionService:       sessionService,
		UserService:          userService,
		PasswordResetService: passwordResetService,
		VerificationService:  verificationService,
		EmailService:         emailService,
		WeatherService:       weatherService,
		ContentService:       contentService,
		SitemapService:       sitemapService,
		Resolver:             component.NewResolver(registry),
		AuthLimiter:          limiter,
		ClientIP:             clientIP,
	}, nil
}

func openContent(cfg *config.Config) (fs.FS, error) {
	if cfg.ContentSource == "s3" {
		s3fs, err := storage.New(cfg)
		if err != nil {
			return nil, err
		}
		return s3fs, nil
	}

	slog.Info("serving content from local directory", "path", cfg.ContentPath)
	return os.DirFS(cfg.ContentPath), nil
}

func (a *App) Close() error {
	var errs []error
	if closer, ok := a.AuthLimiter.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
