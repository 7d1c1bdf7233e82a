package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/backup"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/config"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/diagnosis"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/handler"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/middleware"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/notify"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/response"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/session"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/weather"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/websocket"
)

// Server wires the stores, services, and handlers into one HTTP surface.
type Server struct {
	cfg      config.Config
	store    *store.Store
	sessions *session.Manager
	hub      *websocket.Hub
	backups  *backup.Manager
	limiter  *middleware.RateLimiter
	logger   *slog.Logger

	auth      *handler.AuthHandler
	records   *handler.RecordHandler
	users     *handler.UserHandler
	weather   *handler.WeatherHandler
	diagnosis *handler.DiagnosisHandler
	push      *handler.PushHandler
	backupH   *handler.BackupHandler
}

func New(cfg config.Config, st *store.Store, logger *slog.Logger) *Server {
	sessions := session.NewManager(st, logger.With("component", "sessions"))
	hub := websocket.NewHub(logger.With("component", "websocket"))
	pushSvc := notify.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger.With("component", "push"))
	backups := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		Interval: cfg.BackupInterval,
	}, st, logger.With("component", "backup"))
	weatherSvc := weather.NewService(weather.Config{
		Latitude:        cfg.WeatherLatitude,
		Longitude:       cfg.WeatherLongitude,
		TemperatureUnit: cfg.WeatherUnits,
	})
	diagClient := diagnosis.NewClient(diagnosis.Config{
		URL:    cfg.DiagnosisURL,
		APIKey: cfg.DiagnosisAPIKey,
		Model:  cfg.DiagnosisModel,
	})

	cookies := cfg.CookieConfig()
	production := cfg.Production()

	return &Server{
		cfg:       cfg,
		store:     st,
		sessions:  sessions,
		hub:       hub,
		backups:   backups,
		limiter:   middleware.NewRateLimiter(),
		logger:    logger,
		auth:      handler.NewAuthHandler(sessions, st, pushSvc, cookies, cfg.AdminEmail, production, logger),
		records:   handler.NewRecordHandler(st, hub, production, logger),
		users:     handler.NewUserHandler(st, sessions, cfg.AdminEmail, production, logger),
		weather:   handler.NewWeatherHandler(weatherSvc),
		diagnosis: handler.NewDiagnosisHandler(diagClient, production, logger),
		push:      handler.NewPushHandler(st, pushSvc, production, logger),
		backupH:   handler.NewBackupHandler(backups, logger),
	}
}

// Backups exposes the backup manager so main can run its schedule.
func (s *Server) Backups() *backup.Manager { return s.backups }

// Limiter exposes the rate limiter so main can run periodic cleanup.
func (s *Server) Limiter() *middleware.RateLimiter { return s.limiter }

// Router builds the full route table. Mutating routes behind authentication
// also require the per-session CSRF token.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(s.sessions, s.cfg.CookieConfig())
	requireCSRF := middleware.RequireCSRF(s.sessions)
	protect := func(h http.HandlerFunc) http.Handler {
		return requireAuth(requireCSRF(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(requireCSRF(middleware.RequireAdmin(h)))
	}
	throttled := middleware.RateLimit(s.limiter, func(r *http.Request) string {
		return r.URL.Path + "|" + middleware.RealIP(r)
	}, 10, time.Minute)

	mux.HandleFunc("GET /health", s.health)
	mux.Handle("POST /auth/register", throttled(http.HandlerFunc(s.auth.Register)))
	mux.Handle("POST /auth/login", throttled(http.HandlerFunc(s.auth.Login)))
	mux.Handle("POST /auth/password-reset/request", throttled(http.HandlerFunc(s.auth.PasswordResetRequest)))
	mux.Handle("POST /auth/password-reset/complete", throttled(http.HandlerFunc(s.auth.PasswordResetComplete)))

	mux.Handle("GET /auth/me", protect(s.auth.Me))
	mux.Handle("PATCH /auth/me", protect(s.auth.UpdateMe))
	mux.Handle("POST /auth/logout", protect(s.auth.Logout))
	mux.Handle("POST /auth/change-password", protect(s.auth.ChangePassword))
	mux.Handle("GET /auth/sessions", protect(s.auth.Sessions))
	mux.Handle("DELETE /auth/sessions/{id}", protect(s.auth.RevokeSession))

	mux.Handle("GET /api/records/{collection}", protect(s.records.List))
	mux.Handle("POST /api/records/{collection}", protect(s.records.Create))
	mux.Handle("GET /api/records/{collection}/{id}", protect(s.records.Get))
	mux.Handle("PUT /api/records/{collection}/{id}", protect(s.records.Update))
	mux.Handle("DELETE /api/records/{collection}/{id}", protect(s.records.Delete))

	mux.Handle("GET /api/users", protect(s.users.List))
	mux.Handle("PATCH /api/users/{id}", admin(s.users.Update))
	mux.Handle("GET /api/audit", admin(s.users.Audit))

	mux.Handle("GET /api/weather", protect(s.weather.Current))
	mux.Handle("POST /api/diagnose", protect(s.diagnosis.Diagnose))

	mux.Handle("GET /api/push/vapid-key", protect(s.push.VAPIDKey))
	mux.Handle("POST /api/push/subscribe", protect(s.push.Subscribe))
	mux.Handle("DELETE /api/push/subscriptions/{id}", protect(s.push.Unsubscribe))

	mux.Handle("POST /api/backup/now", admin(s.backupH.Now))
	mux.Handle("GET /api/backup/status", admin(s.backupH.Status))

	mux.Handle("GET /ws", requireAuth(websocket.Handler(s.hub, s.logger.With("component", "websocket"))))

	chain := middleware.SecurityHeaders(s.cfg.AllowedOrigins)(
		middleware.RequestLogger(s.logger.With("component", "http"))(mux),
	)
	return chain
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
	})
}
