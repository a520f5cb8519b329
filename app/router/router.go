package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chem-purchase-assistant/app/controller"
	"chem-purchase-assistant/app/session"
	"chem-purchase-assistant/logging"
)

type Controllers struct {
	Auth     *controller.AuthController
	Purchase *controller.PurchaseController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes builds the HTTP handler for the assistant backend
func SetupRoutes(controllers *Controllers, sessions *session.Manager, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(sessions.Load)

	// Ping endpoint
	r.Get("/ping", pingHandler)

	// Account routes
	r.Post("/register", controllers.Auth.Register)
	r.Post("/login", controllers.Auth.Login)
	r.Post("/logout", controllers.Auth.Logout)
	r.Get("/get_current_user", controllers.Auth.CurrentUser)

	// Purchase routes need a session
	r.Group(func(r chi.Router) {
		r.Use(session.Require)
		r.Post("/chemical_purchase", controllers.Purchase.ChemicalPurchase)
		r.Post("/chemical_purchase/summary", controllers.Purchase.ExportSummary)
	})

	return r
}
