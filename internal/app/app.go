package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/catalog"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/order"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/review"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/domain/user"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/handler"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/mail"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/repository"
	"github.com/malikadeel12/TheGiftOasis-Backend/internal/upload"
	"github.com/malikadeel12/TheGiftOasis-Backend/pkg/health"
	"github.com/malikadeel12/TheGiftOasis-Backend/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	blogRepo := repository.NewBlogRepository(pool)
	orderSeq := repository.NewPostgresSequence(pool)

	// Outbound mail: real SMTP when configured, log-only otherwise.
	var sender mail.Sender
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		sender = mail.NewLogSender(lg.Named("mail"))
	}

	// Domain services.
	catalogSvc := catalog.NewService(productRepo)
	orderSvc := order.NewService(productRepo, orderRepo, orderSeq, sender, lg.Named("orders"))
	reviewSvc := review.NewService(reviewRepo)
	signer := user.NewTokenSigner([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)
	userSvc := user.NewService(userRepo, signer)
	uploader := upload.NewLocalUploader(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)

	// HTTP handlers.
	h := handler.New(catalogSvc, orderSvc, reviewSvc, userSvc, blogRepo, uploader)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Upload.Dir))))
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("giftoasis-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
