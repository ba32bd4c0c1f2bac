package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	v1handlers "github.com/nurtura/leadline/internal/api/v1/handlers"
	"github.com/nurtura/leadline/internal/config"
	"github.com/nurtura/leadline/internal/services"
)

func main() {
	// .env is for local development; in deployment the environment is set
	// by the platform and the file is absent.
	_ = godotenv.Load()

	setupLogger()

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svcs.Close()

	r := mux.NewRouter()
	v1handlers.RegisterV1Routes(r, svcs)

	addr := config.GetServerAddr()
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(config.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
