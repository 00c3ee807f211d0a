package main

import (
	"os"

	"github.com/yigit/uniconsult/internal/pkg/logger"
	"github.com/yigit/uniconsult/internal/server"
)

// @title UniConsult API
// @version 1.0
// @description API for scheduling consultations between students and faculty
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@uniconsult.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers may send the session cookie instead.

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
