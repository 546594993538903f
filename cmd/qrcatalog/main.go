package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/qrcatalog/internal/cli"
)

var version = "dev"

func main() {
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
