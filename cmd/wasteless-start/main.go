// cmd/wasteless-start/main.go
//
// Checks the Go toolchain, then downloads modules, builds bin/wasteless and
// runs it. Ctrl+C while the TUI is running exits cleanly.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kingrea/wasteless/internal/bootstrap"
)

type hinter interface {
	Hint() string
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.New(cwd).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var h hinter
		if errors.As(err, &h) && h.Hint() != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", h.Hint())
		}
		stop()
		os.Exit(1)
	}
}
