package main

import (
	"context"
	"fmt"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/config"
	consolehttp "github.com/fieldscope/survey-console/internal/handler/http"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/server"
	"github.com/fieldscope/survey-console/internal/service"
	"github.com/fieldscope/survey-console/internal/session"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/internal/workers"
	"github.com/fieldscope/survey-console/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("survey-console")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	db, err := store.NewConnectPostgres(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err = migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repos := store.NewRepositories(db, log)

	platform, err := adapter.NewHTTPPlatformAdapter(cfg.Upstream, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating platform adapter")
	}

	sessions := session.NewCustodian(cfg.Session, log)
	coordinator := session.NewCoordinator(platform, log)
	hydrator := session.NewHydrator(platform, cfg.Session.HydrationTimeout, log)

	services := service.NewServices(repos, platform, cfg.Activation, log)

	handler, err := consolehttp.NewHandler(services, platform, sessions, coordinator, hydrator, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handler")
	}

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	allWorkers := workers.NewWorkers(
		workers.NewExpirySweeper(repos.Codes, repos.Audit, cfg.Workers.SweepInterval, log),
	)
	allWorkers.Run()

	srv.RunServer()

	allWorkers.Stop()

	if err = db.Close(); err != nil {
		log.Err(err).Msg("error closing database connection")
	}
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
