package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Optional; supplies INVOICER_DB_KEY and LOG_LEVEL during development
	_ = godotenv.Load()

	// If the user asked for help, avoid initializing the full app (which may prompt)
	skipInit := false
	for _, a := range os.Args[1:] {
		if a == "-h" || a == "--help" || a == "help" {
			skipInit = true
			break
		}
	}

	if !skipInit {
		ctx := context.Background()
		a, err := app.New(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
