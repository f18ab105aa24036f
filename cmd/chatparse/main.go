package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-chat-parser/internal/adapters/parser"
	"whatsapp-chat-parser/internal/core/services"
	applog "whatsapp-chat-parser/internal/log"
	"whatsapp-chat-parser/internal/pkg/config"
	"whatsapp-chat-parser/internal/ports"
	"whatsapp-chat-parser/internal/resources"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "chatparse",
		Short:         "Parse WhatsApp chat exports into a message table",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default config.yml)")

	rootCmd.AddCommand(parseCmd(&configPath))
	rootCmd.AddCommand(detectCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app — общие зависимости подкоманд.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	res    *resources.Set
	parser ports.Parser
}

// newApp загружает конфигурацию, настраивает логгер и собирает конвейер разбора.
// Логи пишутся в stderr, чтобы не смешиваться с результатом в stdout.
func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := applog.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.MaskPhoneNumbers)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	res, err := resources.Load(cfg.ResourcePaths())
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	svc := services.NewParseService(res,
		services.WithPoolSize(cfg.Processing.PoolSize),
		services.WithSampleSize(cfg.Processing.SampleSize),
		services.WithLogger(logger),
	)

	return &app{
		cfg:    cfg,
		log:    logger,
		res:    res,
		parser: parser.NewTextParser(svc),
	}, nil
}
