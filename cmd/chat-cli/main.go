package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go-chat-cli/internal/api"
	"go-chat-cli/internal/config"
	"go-chat-cli/internal/history"
	"go-chat-cli/internal/realtime"
	"go-chat-cli/internal/ui"
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "chat-cli",
		Short:        "terminal client for the chat server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	root.Flags().StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "chat server base URL")
	root.Flags().StringVar(&cfg.DataPath, "data-path", cfg.DataPath, "scrollback cache directory (empty disables)")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "debug log file (empty disables)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// The terminal belongs to the UI; logs go to a file or nowhere.
	setupLogging(cfg)

	client := api.NewClient(cfg.ServerURL)

	store, err := history.Open(cfg.DataPath)
	if err != nil {
		// The cache is an optimization; the client works without it.
		log.Warn().Err(err).Msg("[main] scrollback cache disabled")
	}
	defer store.Close()

	rt := realtime.NewClient()
	defer rt.Close()

	model := ui.NewModel(client, rt, store)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
		}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
