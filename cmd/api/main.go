package main

import (
	"os"

	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
	"github.com/kindergarten-canvas/backend/internal/server"
)

// @title Kindergarten Canvas API
// @version 1.0
// @description Content management API for the kindergarten site and its admin panel

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, prefixed with Bearer

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
