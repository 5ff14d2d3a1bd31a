package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/promptgram/promptgram/internal/config"
	"github.com/promptgram/promptgram/internal/telegram"
	"github.com/promptgram/promptgram/internal/ui"
)

func main() {
	cfgDir := config.Dir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	// Log to a file: stdout belongs to the TUI.
	logPath := filepath.Join(cfgDir, "promptgram.log")
	os.MkdirAll(cfgDir, 0700)
	logCfg := zap.NewDevelopmentConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		logCfg.Level = lvl
	}
	logCfg.OutputPaths = []string{logPath}
	logCfg.ErrorOutputPaths = []string{logPath}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	flow := telegram.NewLoginFlow()
	gw := telegram.NewGateway(cfg, config.SessionFile(), flow, logger)

	newClient := func(h *telegram.Handle) telegram.Client {
		return telegram.NewService(h, logger)
	}

	app := ui.NewApp(cfg, cfgPath, gw, flow, newClient, logger)

	// Auth challenges arrive on the gotd flow goroutine; forward them
	// into the event loop.
	flow.OnCodeRequested = func() { app.Send(ui.CodeRequestedMsg{}) }
	flow.OnPasswordRequested = func() { app.Send(ui.PasswordRequestedMsg{}) }

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
