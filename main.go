// Package main is the entry point for the forensics case management service.
package main

import (
	"context"
	"fmt"
	"os"

	"forensics/bootstrap"
	"forensics/cmd"
	_ "forensics/docs"
)

// run initializes and starts the service.
func run() error {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()

	return nil
}

func main() {
	// Check if running as CLI command
	if len(os.Args) > 1 && os.Args[1] == "intel" {
		// Strip "intel" since the command already knows its name
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

		if err := cmd.NewIntelCmd().Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
