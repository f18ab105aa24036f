package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// optionFlags — флаги командной строки, переопределяющие секцию parsing конфигурации.
type optionFlags struct {
	platform          string
	language          string
	smilies           string
	urls              string
	anon              string
	order             string
	consent           string
	anonymizeMentions bool
	timezone          string
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.platform, "platform", "", "export platform: auto, android, ios")
	fs.StringVar(&f.language, "language", "", "export language: auto, english, german, ...")
	fs.StringVar(&f.smilies, "smilies", "", "smiley detection: builtin, dictionary")
	fs.StringVar(&f.urls, "urls", "", "url extraction: full, domain")
	fs.StringVar(&f.anon, "anon", "", "anonymization: off, replace, add")
	fs.StringVar(&f.order, "order", "", "order columns: none, time, original, both")
	fs.StringVar(&f.consent, "consent", "", "keep only senders who wrote this exact message")
	fs.BoolVar(&f.anonymizeMentions, "anonymize-mentions", true, "assign pseudonyms to names mentioned only in system messages")
	fs.StringVar(&f.timezone, "timezone", "", "IANA time zone of the export timestamps")
}

// apply накладывает заданные флаги на опции из конфигурации.
func (f *optionFlags) apply(cmd *cobra.Command, base domain.Options) (domain.Options, error) {
	opts := base
	changed := cmd.Flags().Changed

	if f.platform != "" {
		p, err := domain.ParsePlatform(f.platform)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Platform = p
	}
	if f.language != "" {
		l, err := domain.ParseLanguage(f.language)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Language = l
	}
	if f.smilies != "" {
		opts.SmileyStrategy = domain.SmileyStrategy(f.smilies)
	}
	if f.urls != "" {
		opts.URLMode = domain.URLMode(f.urls)
	}
	if f.anon != "" {
		opts.AnonMode = domain.AnonMode(f.anon)
	}
	if f.order != "" {
		opts.Order = domain.Order(f.order)
	}
	if changed("consent") {
		consent := f.consent
		opts.ConsentText = &consent
	}
	if changed("anonymize-mentions") {
		opts.AnonymizeMentions = f.anonymizeMentions
	}
	if f.timezone != "" {
		loc, err := time.LoadLocation(f.timezone)
		if err != nil {
			return domain.Options{}, fmt.Errorf("timezone: %w", err)
		}
		opts.Location = loc
	}

	if err := opts.Validate(); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}

// chooser задает вопрос с вариантами ответа.
type chooser interface {
	Choose(prompt string, options []string) (string, error)
}

// resolveAmbiguity спрашивает пользователя платформу или язык, если их не удалось
// определить автоматически. Возвращает false, если ошибка не связана с определением формата.
func resolveAmbiguity(err error, opts domain.Options, table *resources.IndicatorTable, c chooser) (domain.Options, bool, error) {
	var formatErr *domain.AmbiguousFormatError
	if errors.As(err, &formatErr) {
		prompt := fmt.Sprintf("Could not detect the export platform (android=%d, ios=%d matches). Which device exported the chat?",
			formatErr.AndroidCount, formatErr.IOSCount)
		choice, chooseErr := c.Choose(prompt, []string{string(domain.PlatformAndroid), string(domain.PlatformIOS)})
		if chooseErr != nil {
			return opts, true, chooseErr
		}
		opts.Platform = domain.Platform(choice)
		return opts, true, nil
	}

	var langErr *domain.AmbiguousLanguageError
	if errors.As(err, &langErr) {
		var langs []string
		for _, l := range table.Languages() {
			langs = append(langs, string(l))
		}
		choice, chooseErr := c.Choose("Could not detect the export language. Which language is the phone set to?", langs)
		if chooseErr != nil {
			return opts, true, chooseErr
		}
		opts.Platform = langErr.Platform
		opts.Language = domain.Language(choice)
		return opts, true, nil
	}

	return opts, false, nil
}
