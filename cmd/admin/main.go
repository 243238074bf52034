package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/audit"
	"finitefield.org/orders-admin/internal/admin/catalog"
	"finitefield.org/orders-admin/internal/admin/config"
	"finitefield.org/orders-admin/internal/admin/feedback"
	"finitefield.org/orders-admin/internal/admin/httpserver"
	"finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/observability"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink := buildAuditSink(cfg.Audit, logger)
	defer closeSink()

	ordersBackend, catalogBackend, err := buildBackends(cfg.Backend, logger)
	if err != nil {
		return err
	}

	registry, err := adminorders.NewRegistry(adminorders.Options{
		Backend:        ordersBackend,
		Notifier:       feedback.Contextual{},
		Navigator:      feedback.Contextual{},
		Confirmer:      feedback.Contextual{},
		Audit:          sink,
		Logger:         logger.Named("orders"),
		CoalesceDetail: cfg.Orders.CoalesceDetail,
	}, adminorders.DefaultIdleTTL)
	if err != nil {
		return err
	}
	products, err := catalog.NewManager(catalog.Options{
		Backend:   catalogBackend,
		Notifier:  feedback.Contextual{},
		Navigator: feedback.Contextual{},
		Confirmer: feedback.Contextual{},
		Audit:     sink,
		Logger:    logger.Named("catalog"),
	})
	if err != nil {
		return err
	}

	sessions, err := buildSessions(cfg.Session, cfg.Server, logger)
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Address,
		BasePath:         cfg.Server.BasePath,
		Environment:      cfg.Server.Environment,
		Authenticator:    buildAuthenticator(ctx, cfg.Firebase, logger),
		Sessions:         sessions,
		CSRFCookieSecure: cfg.Server.CSRFCookieSecure,
		Orders:           registry,
		Catalog:          products,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("environment", cfg.Server.Environment),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("admin server stopped")
	return nil
}

func buildBackends(cfg config.BackendConfig, logger *zap.Logger) (adminorders.Backend, catalog.Backend, error) {
	if cfg.BaseURL == "" {
		logger.Warn("BACKEND_URL not set; serving in-memory orders and products")
		return adminorders.NewStaticBackend(), catalog.NewStaticBackend(), nil
	}

	client := &http.Client{}
	orders, err := adminorders.NewHTTPBackend(cfg.BaseURL, client, logger.Named("orders.backend"))
	if err != nil {
		return nil, nil, err
	}
	products, err := catalog.NewHTTPBackend(cfg.BaseURL, client, logger.Named("catalog.backend"))
	if err != nil {
		return nil, nil, err
	}
	return orders, products, nil
}

func buildAuditSink(cfg config.AuditConfig, logger *zap.Logger) (audit.Logger, func()) {
	trail := audit.NewZapLogger(logger.Named("audit"))
	if len(cfg.Brokers) == 0 {
		return trail, func() {}
	}

	publisher := audit.NewKafkaPublisher(audit.NewKafkaWriter(cfg.Brokers, cfg.Topic), logger.Named("audit.kafka"))
	logger.Info("audit stream enabled", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return audit.Multi{trail, publisher}, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("audit publisher close failed", zap.Error(err))
		}
	}
}

func buildSessions(cfg config.SessionConfig, server config.ServerConfig, logger *zap.Logger) (*session.Manager, error) {
	hashKey := []byte(cfg.HashKey)
	if len(hashKey) == 0 {
		logger.Warn("SESSION_HASH_KEY not set; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			return nil, errors.New("generate session key: entropy source unavailable")
		}
	}
	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}
	return session.NewManager(session.Config{
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: server.CSRFCookieSecure,
	})
}

func buildAuthenticator(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) middleware.Authenticator {
	if cfg.ProjectID == "" {
		logger.Warn("FIREBASE_PROJECT_ID not set; using passthrough authenticator")
		return middleware.DefaultAuthenticator()
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID})
	if err != nil {
		logger.Error("initialise Firebase app failed; using passthrough authenticator", zap.Error(err))
		return middleware.DefaultAuthenticator()
	}
	client, err := app.Auth(ctx)
	if err != nil {
		logger.Error("initialise Firebase auth client failed; using passthrough authenticator", zap.Error(err))
		return middleware.DefaultAuthenticator()
	}

	logger.Info("Firebase authenticator enabled", zap.String("project", cfg.ProjectID))
	return middleware.NewFirebaseAuthenticator(client)
}
