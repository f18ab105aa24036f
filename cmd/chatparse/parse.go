package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"whatsapp-chat-parser/internal/adapters/exporter"
	"whatsapp-chat-parser/internal/adapters/source"
	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/pkg/term"
)

// maxPrompts ограничивает число уточняющих вопросов: платформа, затем язык.
const maxPrompts = 2

func parseCmd(configPath *string) *cobra.Command {
	var flags optionFlags
	var format, long, out string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a chat export (.txt or .zip) and print or save the message table",
		Long: `Parse a WhatsApp chat export into a table with one row per message.

Output formats: console (default), json, csv, xlsx, sqlite.
--long emoji|smilies|media|url switches json and csv to long format with one row per value.
xlsx always adds long-format sheets; sqlite writes one table per sequence column and requires --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}

			base, err := a.cfg.ParseOptions()
			if err != nil {
				return err
			}
			opts, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}

			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			longColumn, err := exporter.ParseLongColumn(long)
			if err != nil {
				return err
			}

			data, err := source.NewFileSource(args[0]).Fetch()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tm := term.NewTerminal()
			result, err := a.parser.Parse(ctx, data, opts)
			for prompts := 0; err != nil && interactive && tm.IsInteractive() && prompts < maxPrompts; prompts++ {
				var handled bool
				var promptErr error
				opts, handled, promptErr = resolveAmbiguity(err, opts, a.res.Indicators, tm)
				if !handled {
					break
				}
				if promptErr != nil {
					return promptErr
				}
				result, err = a.parser.Parse(ctx, data, opts)
			}
			if err != nil {
				return err
			}

			logDiagnostics(ctx, a, args[0], result.Diagnostics)

			w, closeOut, err := openOutput(out, f)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, closeOut())
			}()

			e, err := exporter.New(f, w, exporter.Settings{
				Long:  longColumn,
				Width: tm.Width(exporter.DefaultConsoleWidth),
				Path:  out,
			})
			if err != nil {
				return err
			}
			return e.Export(result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatConsole), "output format: console, json, csv, xlsx, sqlite")
	cmd.Flags().StringVar(&long, "long", "", "long format column: emoji, smilies, media, url")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&interactive, "interactive", true, "ask for platform or language when detection is ambiguous")

	return cmd
}

// openOutput открывает файл вывода или возвращает stdout.
// Для sqlite файл открывает сам экспортер.
func openOutput(path string, f exporter.Format) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if f == exporter.FormatSQLite {
		return nil, noop, nil
	}
	if path == "" {
		return os.Stdout, noop, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() error {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		return nil
	}, nil
}

func logDiagnostics(ctx context.Context, a *app, path string, d *domain.Diagnostics) {
	a.log.InfoContext(ctx, "chat parsed",
		"file", path,
		"platform", d.Platform,
		"language", d.Language,
		"segments", d.Segments,
		"malformed", d.MalformedCount(),
		"pruned", d.Pruned,
		"removed_by_consent", d.RemovedByConsent,
	)
	for _, m := range d.Malformed {
		a.log.DebugContext(ctx, "block dropped", "index", m.Index, "prefix", m.Prefix, "reason", m.Reason)
	}
	for _, w := range d.WarningMessages() {
		a.log.WarnContext(ctx, w)
	}
}
