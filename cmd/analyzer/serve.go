package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const sweepInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI (default)",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(_ *cobra.Command) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	analyzer, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize analyzer", zap.Error(err))
	}
	log.Info("✅ Services initialized successfully")

	storage, sweeper, err := newSessionStorage(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize session store", zap.Error(err))
	}
	if sweeper != nil {
		sweeper.Start(ctx)
	}

	store := session.New(session.Config{
		Expiration:     cfg.Session.TTL,
		Storage:        storage,
		KeyGenerator:   uuid.NewString,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	h := handlers.NewAnalyzeHandler(analyzer, store, cfg.Storage.MaxFileSize, log)
	app := handlers.NewApp(h, cfg.Storage.MaxFileSize, true)
	log.Info("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if sweeper != nil {
			sweeper.Stop()
		}
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr), zap.String("url", "http://localhost"+addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

// newSessionStorage returns nil storage for the in-memory store, which fiber
// provides itself. The postgres store comes with a sweeper for expired rows.
func newSessionStorage(cfg *config.Config, log *zap.Logger) (fiber.Storage, services.SessionSweeper, error) {
	if cfg.Session.Store != config.SessionStorePostgres {
		log.Info("✅ Using in-memory session store", zap.Duration("ttl", cfg.Session.TTL))
		return nil, nil, nil
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	repo := repositories.NewSessionRepository(db)
	log.Info("✅ Using postgres session store", zap.Duration("ttl", cfg.Session.TTL))

	return repo, services.NewSessionSweeper(repo, sweepInterval, log), nil
}
