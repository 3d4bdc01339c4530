package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/formbridge/formbridge/internal/app"
	"github.com/formbridge/formbridge/internal/config"
	"github.com/formbridge/formbridge/internal/logging"
)

var (
	configPath = flag.String("config", "config.yaml", "path to the configuration file")
	migrate    = flag.Bool("migrate", false, "apply database migrations and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrate {
		if errMigrate := app.Migrate(ctx, cfg); errMigrate != nil {
			log.Fatalf("migrate: %v", errMigrate)
		}
		return
	}

	if errRun := app.Run(ctx, cfg); errRun != nil {
		log.Errorf("server exited: %v", errRun)
		os.Exit(1)
	}
}
