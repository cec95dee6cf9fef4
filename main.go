package main

import (
	"os"

	"github.com/deploymenttheory/go-msgreader/cmd"
	"github.com/deploymenttheory/go-msgreader/internal/logger"
)

func main() {
	err := cmd.Execute()

	// Ensure logs are flushed before exit
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}
