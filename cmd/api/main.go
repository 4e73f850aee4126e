package main

import (
	"os"

	"github.com/casportal/casportal/internal/pkg/logger"
	"github.com/casportal/casportal/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
	os.Exit(0)
}
