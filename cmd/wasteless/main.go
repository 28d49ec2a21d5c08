// cmd/wasteless/main.go
//
// Entry point for the WasteLess terminal app. Run it from the directory that
// should own the .wasteless/ data folder.
//
// Flow:
// 1. Initialize .wasteless/ and load config
// 2. Build the TUI model
// 3. Start the local intent bridge when enabled
// 4. Run the program until the user quits

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/wasteless/internal/bridge"
	"github.com/kingrea/wasteless/internal/config"
	"github.com/kingrea/wasteless/internal/logging"
	"github.com/kingrea/wasteless/internal/tui"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so they happen before the process exits.
func run() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		return 1
	}

	if err := config.InitDataDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .wasteless directory: %v\n", err)
		return 1
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	diag, err := logging.New(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening diagnostics log: %v\n", err)
		return 1
	}
	defer diag.Close()

	app, err := tui.NewApp(cfg, tui.WithDiagnostics(diag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting WasteLess: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			diag.Printf("app: close: %v", err)
		}
	}()

	p := tea.NewProgram(app, tea.WithAltScreen())

	// The bridge only forwards; every intent is applied on the update loop.
	settings := bridge.SettingsFromConfig(cfg.Bridge())
	server := bridge.NewServer(
		settings,
		bridge.WithLogger(diag),
		bridge.WithProcessor(bridge.IntentProcessorFunc(func(in bridge.Intent) error {
			p.Send(tui.IntentMsg{Intent: in})
			return nil
		})),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	switch err := server.Start(ctx); {
	case err == nil:
		diag.Printf("bridge: intents accepted at %s/intents", settings.URL())
	case !errors.Is(err, bridge.ErrDisabled):
		diag.Printf("bridge: %v", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			diag.Printf("bridge: shutdown: %v", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return 1
	}
	return 0
}
