// Command sercha-scan searches flat text files in an object store.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/cli"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
