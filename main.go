// main.go
package main

import (
	"context"
	"log"

	"bus-reservation/cmd"
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/events"
	"bus-reservation/internal/wire"
	"bus-reservation/pkg/database"
	"bus-reservation/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// In-process event bus for reservation notifications
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, events.NewWatermillLogger(logger))
	publisher := events.NewPublisher(pubSub, logger)
	defer publisher.Close()

	if err := events.RunReservationLog(context.Background(), pubSub, logger); err != nil {
		logger.Fatal("Failed to start reservation log consumer", zap.Error(err))
	}

	// Wire all dependencies
	app := wire.Wiring(db, repos, publisher, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
