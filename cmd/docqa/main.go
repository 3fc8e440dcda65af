package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"docqa/internal/bootstrap"
	"docqa/internal/config"
	"docqa/internal/logging"
	"docqa/internal/tui"
)

var errUsage = errors.New("usage: docqa [--config=config.yaml] document.{pdf,docx,txt}")

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(err)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

// run returns after the TUI exits. The log file, if any, is closed before
// run returns on every path.
func run(args []string) error {
	fs := flag.NewFlagSet("docqa", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML or TOML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logrus.New()
	if cfg.Logging.File == "" {
		logging.Discard(logger)
	} else {
		closer, err := logging.Setup(logger, cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		defer closer.Close()
	}

	if err := start(context.Background(), cfg, logger, fs.Arg(0)); err != nil {
		logger.WithError(err).Error("docqa stopped")
		return err
	}
	return nil
}

func start(ctx context.Context, cfg *config.AppConfig, logger *logrus.Logger, path string) error {
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	if !app.Answerer.Available() {
		fmt.Fprintf(os.Stderr, "warning: generator unavailable, summaries disabled: %v\n", app.Answerer.Cause())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	session := app.Service.NewSession("local")
	doc, err := session.Ingest(ctx, filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	m := tui.New(session, doc, cfg.Retrieval.DefaultTopK, cfg.Retrieval.MaxTopK)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
