package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-isme/lesson-planner-api/internal/tui"
	"github.com/noah-isme/lesson-planner-api/pkg/plannerclient"
)

func main() {
	configPath := flag.String("config", tui.DefaultConfigPath(), "path to planner.yaml")
	flag.Parse()

	cfg, err := tui.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := plannerclient.New(cfg.ServerURL, plannerclient.WithTimeout(cfg.RequestTimeout))
	app := tui.NewApp(ctx, tui.NewStore(), client, cfg)
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
