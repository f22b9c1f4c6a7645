package main

import (
	"os"

	"nuon-api/core/logger"
	"nuon-api/core/server"
)

// @title Nuon Mentor API
// @version 1.0
// @description Mentor availability and booking API for the Nuon nursing community
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
