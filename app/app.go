package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"chem-purchase-assistant/app/controller"
	"chem-purchase-assistant/app/router"
	"chem-purchase-assistant/app/session"
	"chem-purchase-assistant/config"
	"chem-purchase-assistant/db"
	"chem-purchase-assistant/repository"
	"chem-purchase-assistant/service"
)

// App is the wired backend
type App struct {
	Handler http.Handler
	closers []func() error
}

// Close releases the resources opened by Initialize
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Dependencies overrides collaborators that Initialize would otherwise build
type Dependencies struct {
	Users    repository.UserRepositoryInterface
	Renderer service.PageRenderer
	// BcryptCost 0 uses the bcrypt default
	BcryptCost int
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg config.Config, logger *zap.Logger, deps Dependencies) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}

	users := deps.Users
	if users == nil {
		if cfg.DatabaseURL != "" {
			if err := db.InitDB(ctx, cfg.DatabaseURL, logger); err != nil {
				return nil, fmt.Errorf("failed to initialize database: %w", err)
			}
			a.closers = append(a.closers, db.CloseDB)
			users = repository.NewUserRepository(db.DB)
		} else {
			logger.Warn("no database configured, accounts are kept in memory")
			users = repository.NewMemoryUserRepository()
		}
	}

	hashKey := cfg.SessionHashKey
	if len(hashKey) == 0 {
		logger.Warn("SESSION_HASH_KEY not set, sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	sessions, err := session.NewManager(session.Config{
		HashKey:  hashKey,
		BlockKey: cfg.SessionBlockKey,
		MaxAge:   cfg.SessionMaxAge,
		Secure:   cfg.SecureCookies,
	}, logger)
	if err != nil {
		return nil, err
	}

	renderer := deps.Renderer
	if renderer == nil {
		renderer = service.NewChromeRenderer(cfg.ChromePath, cfg.ExportTimeout)
	}

	authService := service.NewAuthService(users, deps.BcryptCost, logger)
	purchaseService := service.NewPurchaseService(service.PurchaseServiceOptions{
		MinLatency: cfg.PurchaseLatencyMin,
		MaxLatency: cfg.PurchaseLatencyMax,
		Logger:     logger,
	})
	exportService := service.NewSummaryExportService(renderer, logger)

	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(authService, sessions, logger),
		Purchase: controller.NewPurchaseController(purchaseService, exportService, logger),
	}

	a.Handler = router.SetupRoutes(controllers, sessions, logger)
	return a, nil
}
