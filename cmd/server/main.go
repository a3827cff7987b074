// Command server starts the café HTTP service without the CLI. Container
// images use it as their entrypoint.
package main

import (
	"os"

	"github.com/shashiranjanraj/cafe/internal/server"
	"github.com/shashiranjanraj/cafe/pkg/logger"

	_ "github.com/shashiranjanraj/cafe/app/jobs"
)

func main() {
	if err := server.Start(); err != nil {
		logger.Error("server: exited", "error", err)
		os.Exit(1)
	}
}
