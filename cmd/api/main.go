package main

import (
	"os"

	"github.com/yigit/recruitportal/internal/pkg/logger"
	"github.com/yigit/recruitportal/internal/server"
)

// @title Recruitment Portal Review API
// @version 1.0
// @description Review backend for the student organization recruitment portal

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token issued by the portal's session provider

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged by the setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
