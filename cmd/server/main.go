package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/featureflags"
	"github.com/yourorg/studioportal/internal/generation"
	"github.com/yourorg/studioportal/internal/handler"
	"github.com/yourorg/studioportal/internal/infrastructure/logger"
	"github.com/yourorg/studioportal/internal/infrastructure/sheets"
	"github.com/yourorg/studioportal/internal/observability/metrics"
	"github.com/yourorg/studioportal/internal/observability/tracing"
	"github.com/yourorg/studioportal/internal/repository"
	"github.com/yourorg/studioportal/internal/security"
	"github.com/yourorg/studioportal/internal/security/audit"
	"github.com/yourorg/studioportal/internal/security/auth"
	"github.com/yourorg/studioportal/internal/security/middleware"
	"github.com/yourorg/studioportal/internal/security/ratelimit"
	"github.com/yourorg/studioportal/internal/service"
	"github.com/yourorg/studioportal/internal/session"
	"github.com/yourorg/studioportal/internal/store"
	"github.com/yourorg/studioportal/internal/worker"
	"github.com/yourorg/studioportal/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting StudioPortal server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize sheet store
	sheetsClient := sheets.NewClient(cfg.SheetsAPIURL, cfg.SheetsDocID, cfg.SheetsAPIToken, log)
	tableStore := store.New(sheetsClient, time.Duration(cfg.CacheTTLSec)*time.Second, log)

	// 5. Initialize repositories
	studioRepo := repository.NewStudioRepository(tableStore, log)
	clientRepo := repository.NewClientRepository(tableStore, log)
	planRepo := repository.NewPlanRepository(tableStore, log)

	// 6. Initialize generation and services
	generator, err := generation.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Error("failed to initialize generation client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessions := session.NewManager()
	trialGate := service.NewTrialGate(cfg.TrialGraceDays, log)
	authService := service.NewAuthService(studioRepo, clientRepo, trialGate, sessions, log)
	planService := service.NewPlanService(planRepo, generator, log)

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "studioportal")
	loginLimiter := ratelimit.NewLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)
	auditLogger := audit.NewLogger(log)
	authz := security.NewAuthorizationService(log)
	sessionTTL := time.Duration(cfg.SessionTTLMins) * time.Minute

	// 8. Initialize handlers
	loginHandler := handler.NewLoginHandler(authService, tokenManager, auditLogger, sessionTTL, log)
	logoutHandler := handler.NewLogoutHandler(authService, log)
	clientsHandler := handler.NewClientsHandler(clientRepo, authz, auditLogger, log)
	plansHandler := handler.NewPlansHandler(planService, clientRepo, authz, auditLogger, log)
	generateHandler := handler.NewGenerateHandler(planService, clientRepo, authz, log)
	settingsHandler := handler.NewSettingsHandler(studioRepo, log)
	shareLinksHandler := handler.NewShareLinksHandler(clientRepo, authz, log)
	healthHandler := handler.NewHealthHandler(sheetsClient, log)

	// 9. Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/login", loginHandler)
	mux.Handle("POST /api/logout", logoutHandler)
	mux.HandleFunc("GET /api/clients", clientsHandler.List)
	mux.HandleFunc("POST /api/clients", clientsHandler.Create)
	mux.HandleFunc("PUT /api/clients/{username}/contact", clientsHandler.UpdateContact)
	mux.HandleFunc("GET /api/clients/{username}/plans", plansHandler.History)
	mux.HandleFunc("POST /api/clients/{username}/plans", plansHandler.Save)
	mux.HandleFunc("GET /api/plans/current", plansHandler.Current)
	mux.Handle("POST /api/generate", generateHandler)
	mux.HandleFunc("GET /api/settings", settingsHandler.Get)
	mux.HandleFunc("PUT /api/settings", settingsHandler.Update)
	mux.Handle("GET /api/share-links", shareLinksHandler)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> rate limit -> session -> content type -> CORS
	rootHandler := withRequestID(
		middleware.LoginRateLimitMiddleware(loginLimiter, log)(
			middleware.SessionMiddleware(tokenManager, sessions, log)(
				middleware.ValidateJSONContentType(log)(handlerWithCORS),
			),
		),
		log,
	)

	// 10. Start cache refresh worker unless disabled
	if !featureflags.Enabled("disable_cache_warm") {
		refreshWorker := worker.NewRefreshWorker(
			tableStore,
			[]string{domain.TableStudios, domain.TableClients, domain.TablePlans},
			log,
			time.Duration(cfg.CacheTTLSec)*time.Second,
		)
		go refreshWorker.Start(ctx)
	}

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "studioportal"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generation requests are slow
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("login_rate_per_minute", cfg.LoginRatePerMinute),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop refresh worker
	loginLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers
// and records per-request metrics.
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
