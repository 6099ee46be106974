package routes

import (
	"net/http"

	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/handler"
	"github.com/templui/filesmanager/internal/metrics"
	"github.com/templui/filesmanager/internal/middleware"
	"github.com/templui/filesmanager/internal/service"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	status := handler.NewAppHandler(app.AppService)
	users := handler.NewUserHandler(app.UserService)
	auth := handler.NewAuthHandler(app.AuthService)
	files := handler.NewFileHandler(app.FileService)

	requireAuth := middleware.RequireAuth(app.AuthService, service.ErrUnauthorized)
	optionalAuth := middleware.OptionalAuth(app.AuthService, service.ErrUnauthorized)
	rateLimiter := middleware.RateLimit(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow, app.Cfg.TrustProxyHeaders)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /status", status.Status)
	mux.HandleFunc("GET /stats", status.Stats)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /users", rateLimiter(users.Register))

	// Basic auth in, token out
	mux.HandleFunc("GET /connect", rateLimiter(auth.Connect))
	mux.HandleFunc("POST /connect", rateLimiter(auth.Connect))

	// ============================================================================
	// TOKEN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /disconnect", requireAuth(auth.Disconnect))
	mux.HandleFunc("POST /disconnect", requireAuth(auth.Disconnect))

	mux.HandleFunc("GET /users/me", requireAuth(users.Me))

	mux.HandleFunc("POST /files", requireAuth(files.Upload))
	mux.HandleFunc("GET /files", requireAuth(files.Index))
	mux.HandleFunc("GET /files/{id}", requireAuth(files.Show))
	mux.HandleFunc("PUT /files/{id}/publish", requireAuth(files.Publish))
	mux.HandleFunc("PUT /files/{id}/unpublish", requireAuth(files.Unpublish))

	// Public files are readable without a token
	mux.HandleFunc("GET /files/{id}/data", optionalAuth(files.Data))

	mux.HandleFunc("/", handler.NotFound)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.CORSOrigins),
		middleware.LimitBody(app.Cfg.MaxUploadBytes),
		middleware.RequestLogging,
	)
}
