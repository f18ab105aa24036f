package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"whatsapp-chat-parser/internal/client"
	"whatsapp-chat-parser/internal/pkg/config"
)

func main() {
	var (
		configPath string
		serverAddr string
		format     string
		long       string
		outPath    string
		pageSize   int
	)
	options := map[string]*string{}
	optionFlag := func(name, usage string) {
		options[name] = flag.String(name, "", usage)
	}

	flag.StringVar(&configPath, "config", "", "Path to config file (default config.yml)")
	flag.StringVar(&serverAddr, "server", "", "Server address (default from config)")
	flag.StringVar(&format, "format", "", "Download result as csv, json or xlsx instead of printing rows")
	flag.StringVar(&long, "long", "", "Long format column for -format: emoji, smilies, media, url")
	flag.StringVar(&outPath, "out", "", "Output file for -format (default stdout)")
	flag.IntVar(&pageSize, "page-size", 200, "Rows per result page")
	optionFlag("platform", "Export platform: auto, android, ios")
	optionFlag("language", "Export language: auto, english, german, ...")
	optionFlag("smilies", "Smiley detection: builtin, dictionary")
	optionFlag("urls", "URL extraction: full, domain")
	optionFlag("anon", "Anonymization: off, replace, add")
	optionFlag("order", "Order columns: none, time, original, both")
	optionFlag("consent", "Keep only senders who wrote this exact message")
	optionFlag("anonymize_mentions", "Pseudonymize names mentioned only in system messages: true, false")
	optionFlag("timezone", "IANA time zone of the export timestamps")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <chat.txt|chat.zip>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if serverAddr == "" {
		serverAddr = cfg.Client.ServerURL
	}

	// Передаются только явно заданные опции, остальные берутся из конфигурации сервера
	fields := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		if v, ok := options[f.Name]; ok {
			fields[f.Name] = *v
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewServerClient(serverAddr, cfg.Client.HTTPTimeout)

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("Не удалось открыть файл %s: %v", filePath, err)
	}
	started, err := c.StartTask(ctx, client.DocumentFile{Name: filepath.Base(filePath), Content: file}, fields)
	file.Close()
	if err != nil {
		log.Fatalf("Не удалось создать задачу: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Задача создана с идентификатором: %s\n", started.TaskID)

	_, err = c.WaitForTask(ctx, started.TaskID, cfg.Client.PollInterval, func(s *client.TaskStatusResponse) {
		fmt.Fprintf(os.Stderr, "Статус задачи: %s\n", s.Status)
	})
	if errors.Is(err, client.ErrTaskFailed) {
		fmt.Fprintf(os.Stderr, "Задача не выполнена: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Не удалось дождаться задачи: %v", err)
	}

	out := os.Stdout
	if outPath != "" {
		out, err = os.Create(outPath)
		if err != nil {
			log.Fatalf("Не удалось создать файл %s: %v", outPath, err)
		}
		defer out.Close()
	}

	if format != "" {
		data, err := c.DownloadExport(ctx, started.TaskID, format, long)
		if err != nil {
			log.Fatalf("Не удалось скачать результат: %v", err)
		}
		if _, err := out.Write(data); err != nil {
			log.Fatalf("Не удалось записать результат: %v", err)
		}
		return
	}

	result, err := c.GetAllRows(ctx, started.TaskID, pageSize)
	if err != nil {
		log.Fatalf("Не удалось получить результат: %v", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Не удалось вывести результат: %v", err)
	}
}
