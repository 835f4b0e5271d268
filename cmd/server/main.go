package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/cache"
	"github.com/oggyb/spotme/internal/config"
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/server"
	"github.com/oggyb/spotme/internal/service/auth"
	"github.com/oggyb/spotme/internal/service/discover"
	"github.com/oggyb/spotme/internal/service/matches"
	"github.com/oggyb/spotme/internal/service/profile"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		return err
	}
	defer redisCache.Close()

	blobStore, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		return err
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, cfg.Swipe.DailyLimit); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(cfg, database, redisCache, blobStore, log)

	registrars := []server.Registrar{
		auth.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
	}
	grpcServer, healthServer := server.NewGRPCServer(appCtx, registrars...)
	httpServer := server.NewHTTPServer(cfg.HTTP.Host+":"+cfg.HTTP.Port, appCtx)

	errs := make(chan error, 2)
	go func() {
		addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
		log.Info("starting gRPC server", "addr", addr)
		errs <- server.ServeGRPC(ctx, addr, grpcServer, healthServer)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		errs <- server.ServeHTTP(ctx, httpServer)
	}()

	var first error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil && first == nil {
			first = err
			stop()
		}
	}
	if first != nil && !errors.Is(first, context.Canceled) {
		return first
	}
	log.Info("shutdown complete")
	return nil
}
