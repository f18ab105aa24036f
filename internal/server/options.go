package server

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"whatsapp-chat-parser/internal/domain"
)

// Поля multipart-формы, переопределяющие опции разбора по умолчанию.
const (
	fieldPlatform          = "platform"
	fieldLanguage          = "language"
	fieldSmilies           = "smilies"
	fieldURLs              = "urls"
	fieldAnon              = "anon"
	fieldOrder             = "order"
	fieldConsent           = "consent"
	fieldAnonymizeMentions = "anonymize_mentions"
	fieldTimezone          = "timezone"
)

// optionsFromForm накладывает значения полей формы на базовые опции и проверяет результат.
func optionsFromForm(base domain.Options, form url.Values) (domain.Options, error) {
	opts := base

	if v := form.Get(fieldPlatform); v != "" {
		p, err := domain.ParsePlatform(v)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Platform = p
	}
	if v := form.Get(fieldLanguage); v != "" {
		l, err := domain.ParseLanguage(v)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Language = l
	}
	if v := form.Get(fieldSmilies); v != "" {
		opts.SmileyStrategy = domain.SmileyStrategy(v)
	}
	if v := form.Get(fieldURLs); v != "" {
		opts.URLMode = domain.URLMode(v)
	}
	if v := form.Get(fieldAnon); v != "" {
		opts.AnonMode = domain.AnonMode(v)
	}
	if v := form.Get(fieldOrder); v != "" {
		opts.Order = domain.Order(v)
	}
	if form.Has(fieldConsent) {
		consent := form.Get(fieldConsent)
		opts.ConsentText = &consent
	}
	if v := form.Get(fieldAnonymizeMentions); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Options{}, fmt.Errorf("%s: %w", fieldAnonymizeMentions, err)
		}
		opts.AnonymizeMentions = b
	}
	if v := form.Get(fieldTimezone); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return domain.Options{}, fmt.Errorf("%s: %w", fieldTimezone, err)
		}
		opts.Location = loc
	}

	if err := opts.Validate(); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}
