package main

import (
	"context"
	"flag"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parklot-service/internal/config"
	"parklot-service/internal/console"
	"parklot-service/internal/db"
	apphttp "parklot-service/internal/http"
	"parklot-service/internal/repository"
	"parklot-service/internal/service"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	interactive := flag.Bool("interactive", false, "run the operator console instead of the HTTP server")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.Setup(gormDB, cfg.Lot); err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	log.Info().
		Int("car_spots", cfg.Lot.CarSpots).
		Int("bike_spots", cfg.Lot.BikeSpots).
		Msg("database ready")

	spotRepo := repository.NewSpotRepository(gormDB)
	ticketRepo := repository.NewTicketRepository(gormDB)
	eventRepo := repository.NewEventRepository(gormDB)

	allocator := service.NewSpotAllocator(spotRepo, log)
	fareEngine := service.NewFareEngine(cfg.Fare)
	parkingService := service.NewParkingService(allocator, ticketRepo, eventRepo, fareEngine, log)

	if *interactive {
		reader := console.NewReader(os.Stdin)
		shell := console.NewShell(parkingService, reader, os.Stdout, log)
		if err := shell.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("console session failed")
		}
		return
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	handler := apphttp.NewHandler(parkingService, cfg, log)
	handler.Register(router, apphttp.AuthMiddleware(cfg.Auth.JWTSecret))

	log.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
