package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-sync/internal/cache"
	"github.com/MKhiriev/go-note-sync/internal/config"
	"github.com/MKhiriev/go-note-sync/internal/handler"
	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/relay"
	"github.com/MKhiriev/go-note-sync/internal/server"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/MKhiriev/go-note-sync/internal/store"
	"github.com/MKhiriev/go-note-sync/internal/workers"
	"github.com/MKhiriev/go-note-sync/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("go-note-sync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to redis")
	}
	presence := cache.NewRedisPresence(rdb, log)

	storages := store.NewStorages(db, log)
	services := service.NewServices(storages, cfg, log)

	noteRelay := relay.NewRelay(cfg.Relay.SessionBuffer, log)

	reconciler := workers.NewReconciler(ctx, noteRelay.Tap(), services.NoteService, db, cfg.Workers.SyncInterval, log)
	workers.NewWorkers(reconciler).Run()

	handlers, err := handler.NewHandlers(services, noteRelay, presence, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	// stop the reconciler after the server has drained and hold the process
	// until its final flush has written the last relayed frames
	cancel()
	reconciler.Wait()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
