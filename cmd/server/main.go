package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/api"
	"github.com/monsterbox/backend/internal/catalog"
	"github.com/monsterbox/backend/internal/config"
	"github.com/monsterbox/backend/internal/content"
	"github.com/monsterbox/backend/internal/metadata"
	"github.com/monsterbox/backend/internal/search"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "article-api")

	entry.Info("Starting MonsterBox Article API Service")

	// 1. Config
	cfg := config.Load()

	// 2. Metadata worklist
	meta := metadata.NewStore(entry)
	if err := meta.LoadFile(cfg.Content.MetadataFile); err != nil {
		entry.Fatalf("Failed to load metadata: %v", err)
	}

	// 3. Document locator
	locator, err := content.NewLocator(cfg.Content.DataDir, cfg.Content.DocExtension, entry)
	if err != nil {
		entry.Fatalf("Failed to index content directory: %v", err)
	}

	// 4. Cache + search index warm-up
	extractor := content.NewExtractor(entry)
	cat := catalog.New(entry)
	cat.WarmUp(meta.All(), locator, extractor, cfg.Cache.BatchSize)

	// 5. Search engine
	engine := search.NewEngine(cat, entry)

	// 6. API Server
	server := api.NewServer(cat, meta, engine, cfg, entry)

	httpServer := &http.Server{
		Addr:         cfg.Server.BindAddr,
		Handler:      server.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		entry.Infof("Article API ready on %s (%d articles, %d cached)",
			cfg.Server.BindAddr, meta.Size(), cat.Size())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	entry.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		entry.Errorf("Server shutdown: %v", err)
	}
}
