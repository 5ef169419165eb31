package main

import (
	"fmt"
	"os"

	"github.com/moadev/moabot/common/version"
	"github.com/moadev/moabot/internal/moabot/app"
	"github.com/moadev/moabot/internal/moabot/config"
)

func main() {
	fmt.Printf("Moabot Household Ledger Assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bot, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize moabot: %v\n", err)
		os.Exit(1)
	}
	defer bot.Stop()

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running moabot: %v\n", err)
		os.Exit(1)
	}
}
