package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userauth/internal/config"
	"userauth/internal/events"
	"userauth/internal/oauth"
	"userauth/internal/observability/logging"
	"userauth/internal/observability/metrics"
	"userauth/internal/service"
	impl "userauth/internal/service/impl"
	"userauth/internal/store"
	transport "userauth/internal/transport/http"
	"userauth/pkg/db"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "auth",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting service", "addr", cfg.Addr, "issuer", cfg.Issuer)
	metrics.MustRegister(prometheus.DefaultRegisterer, "auth")

	// 1) DB + migrations
	gdb, sqlDB, err := db.Open(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL, MaxOpenConns: 20, MaxIdleConns: 5})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = db.Migrate(migrateCtx, sqlDB)
	cancel()
	if err != nil {
		return err
	}
	st := store.New(gdb)

	// 2) Services
	pw := impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.JWTSecret),
	})
	otp := impl.NewOTPServiceImpl(cfg.OTPTTL)
	identity := impl.NewIdentityServiceImpl(st)
	email := newEmailService(ctx, cfg, logger)

	as := impl.NewAuthServiceImpl(st, pw, ts, otp, identity, email, events.LogPublisher{Logger: logger})

	var google transport.GoogleAuth
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	} else {
		logger.Warn("google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	// 3) HTTP router
	handler := transport.NewRouter(transport.NewHandler(as, ts, google, transport.Options{
		Production:  cfg.IsProduction(),
		Development: cfg.IsDevelopment(),
		FrontendURL: cfg.FrontendURL,
		CORSOrigins: cfg.AllowedOrigins(),
		AccessTTL:   cfg.AccessTTL,
		RefreshTTL:  cfg.RefreshTTL,
	}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newEmailService picks SMTP when a host is configured and logs codes
// otherwise. An unreachable SMTP server is reported but not fatal.
func newEmailService(ctx context.Context, cfg config.Config, logger *slog.Logger) service.EmailService {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set; password reset codes will be logged, not mailed")
		return impl.LogEmailService{Logger: logger}
	}
	svc := impl.NewSMTPEmailService(impl.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}, cfg.OTPTTL)
	if err := svc.Ping(ctx); err != nil {
		logger.Error("email service not reachable", "error", err)
	} else {
		logger.Info("email service ready", "host", cfg.SMTPHost)
	}
	return svc
}
