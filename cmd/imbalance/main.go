package main

import (
	"os"

	"github.com/manifold-labs/imbalance/internal/utils/logger"
)

func main() {
	logger.Init()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
