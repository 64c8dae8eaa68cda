package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"canvastree/internal/adapters/tui"
	"canvastree/internal/bootstrap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	// The screen belongs to the TUI; logs go to a file and the status line
	logFile, err := bootstrap.LogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	log, err := bootstrap.NewLogger(logFile, os.Getenv("CANVASTREE_LOG_LEVEL"))
	if err != nil {
		return err
	}
	status := tui.NewStatusHook()
	log.AddHook(status)

	rt, err := bootstrap.Open(cfg, log, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewApp(ctx, rt.Engine, rt.Index, cfg.DefaultContent, status)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
