package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prepost/prepost-go/internal/config"
	"github.com/prepost/prepost-go/internal/email"
	"github.com/prepost/prepost-go/internal/handler"
	"github.com/prepost/prepost-go/internal/middleware"
	"github.com/prepost/prepost-go/internal/repository"
	"github.com/prepost/prepost-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	mailer, err := email.NewSender(cfg.Email)
	if err != nil {
		slog.Error("email sender configuration invalid", "error", err)
		os.Exit(1)
	}

	ledger := repository.NewCreditLedger()
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewLoginTokenRepository(db)
	messageRepo := repository.NewMessageRepository(db, ledger)
	reportRepo := repository.NewReportRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, mailer,
		cfg.AppURL, cfg.SessionSecret, cfg.SessionExpiry, cfg.TokenExpiry)
	messageService := service.NewMessageService(messageRepo, userRepo, mailer,
		cfg.AppURL, cfg.ReminderAge)
	reportService := service.NewReportService(reportRepo, messageRepo, userRepo)
	adminService := service.NewAdminService(statsRepo, userRepo, messageRepo,
		reportRepo, cfg.ReminderAge)

	secureCookies := cfg.Env == "production"
	authHandler := handler.NewAuthHandler(authService, int(cfg.SessionExpiry/time.Second), secureCookies)
	messageHandler := handler.NewMessageHandler(messageService)
	reportHandler := handler.NewReportHandler(reportService)
	adminHandler := handler.NewAdminHandler(adminService, reportService)
	cronHandler := handler.NewCronHandler(messageService, cfg.CronSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Session(cfg.SessionSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
	})

	r.Get("/api/v1/auth/verify", authHandler.HandleVerify)
	r.Post("/api/v1/auth/logout", authHandler.HandleLogout)
	r.Get("/api/v1/auth/me", authHandler.HandleMe)

	r.Post("/api/v1/messages", messageHandler.HandleSend)
	r.Get("/api/v1/messages", messageHandler.HandleInbox)
	r.Get("/api/v1/messages/sent", messageHandler.HandleSent)
	r.Get("/api/v1/messages/{id}", messageHandler.HandleRead)
	r.Delete("/api/v1/messages/{id}", messageHandler.HandleDelete)

	r.Post("/api/v1/reports", reportHandler.HandleFile)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.IsAdmin))
		r.Get("/api/v1/admin", adminHandler.HandleOverview)
		r.Get("/api/v1/admin/stats", adminHandler.HandleStats)
		r.Get("/api/v1/admin/users", adminHandler.HandleUsers)
		r.Get("/api/v1/admin/reports", adminHandler.HandlePendingReports)
		r.Post("/api/v1/admin/actions", adminHandler.HandleAction)
	})

	r.Post("/api/v1/cron/reminders", cronHandler.HandleReminderSweep)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
