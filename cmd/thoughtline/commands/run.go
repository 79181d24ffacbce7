package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/thoughtline/internal/config"
	"github.com/kingrea/thoughtline/internal/eventbridge"
	"github.com/kingrea/thoughtline/internal/logging"
	"github.com/kingrea/thoughtline/internal/tui"
)

func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.InitDir(projectDir); err != nil {
		return fmt.Errorf("initialize %s: %w", config.Dir, err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(projectDir)
	if err != nil {
		return err
	}
	defer logger.Close()

	router := eventbridge.NewRouter(eventbridge.RouterWithLogger(logger))
	settings := eventbridge.SettingsFromConfig(cfg)
	var bridgeURL string
	var server *eventbridge.Server
	if settings.Enabled {
		server = eventbridge.NewServer(settings,
			eventbridge.WithProcessor(router),
			eventbridge.WithLogger(logger))
		if err := server.Start(ctx); err != nil {
			// The TUI still works without the bridge; the status line shows it off.
			logger.Printf("thoughtline: bridge unavailable: %v", err)
			fmt.Fprintf(os.Stderr, "warning: event bridge not started: %v\n", err)
			server = nil
		} else {
			bridgeURL = server.BaseURL()
			logger.Printf("thoughtline: stream endpoint %s", settings.StreamURL())
		}
	}
	defer func() {
		if server == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("thoughtline: bridge shutdown: %v", err)
		}
	}()

	app, err := tui.NewApp(cfg,
		tui.WithRouter(router),
		tui.WithBridgeURL(bridgeURL),
		tui.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
