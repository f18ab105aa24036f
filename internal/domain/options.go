package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform — операционная система телефона, с которого сделан экспорт.
type Platform string

const (
	PlatformAuto    Platform = "auto"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Platforms перечисляет все поддерживаемые платформы (без auto).
var Platforms = []Platform{PlatformAndroid, PlatformIOS}

// ParsePlatform разбирает значение платформы из конфигурации или флага.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PlatformAuto:
		return PlatformAuto, nil
	case PlatformAndroid, PlatformIOS:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
}

// Language — язык интерфейса, на котором был сделан экспорт.
type Language string

const (
	LanguageAuto    Language = "auto"
	LanguageEnglish Language = "english"
	LanguageGerman  Language = "german"
)

// ParseLanguage разбирает значение языка. Проверка на наличие строки
// в таблице индикаторов выполняется отдельно, при разрешении опций.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case "", LanguageAuto:
		return LanguageAuto, nil
	}
	for _, r := range l {
		if (r < 'a' || r > 'z') && r != '_' {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
		}
	}
	return l, nil
}

// SmileyStrategy выбирает способ поиска текстовых смайликов.
type SmileyStrategy string

const (
	SmileyBuiltin    SmileyStrategy = "builtin"
	SmileyDictionary SmileyStrategy = "dictionary"
)

// URLMode определяет, сохранять ли ссылку целиком или только домен.
type URLMode string

const (
	URLFull   URLMode = "full"
	URLDomain URLMode = "domain"
)

// AnonMode — режим анонимизации отправителей.
type AnonMode string

const (
	AnonOff     AnonMode = "off"
	AnonReplace AnonMode = "replace"
	AnonAdd     AnonMode = "add"
)

// Order — дополнительные колонки порядка строк.
type Order string

const (
	OrderNone     Order = "none"
	OrderTime     Order = "time"
	OrderOriginal Order = "original"
	OrderBoth     Order = "both"
)

// Значения по умолчанию для заполнителей.
const (
	DefaultNewlinePlaceholder      = " start_newline "
	DefaultMediaOmittedPlaceholder = " media_omitted "
)

// Options — явная конфигурация одного вызова разбора.
// Глобального изменяемого состояния между вызовами нет.
type Options struct {
	Platform                Platform
	Language                Language
	SmileyStrategy          SmileyStrategy
	URLMode                 URLMode
	AnonMode                AnonMode
	Order                   Order
	NewlinePlaceholder      string
	MediaOmittedPlaceholder string
	// ConsentText == nil отключает фильтр согласия.
	ConsentText *string
	// AnonymizeMentions назначает псевдонимы участникам, которые упоминаются
	// только в служебных сообщениях и ни разу не писали сами.
	AnonymizeMentions bool
	// Location — часовой пояс, в котором интерпретируются метки времени экспорта.
	Location *time.Location
}

// DefaultOptions возвращает опции по умолчанию: автоопределение формата,
// полные ссылки, без анонимизации и без колонок порядка.
func DefaultOptions() Options {
	return Options{
		Platform:                PlatformAuto,
		Language:                LanguageAuto,
		SmileyStrategy:          SmileyBuiltin,
		URLMode:                 URLFull,
		AnonMode:                AnonOff,
		Order:                   OrderNone,
		NewlinePlaceholder:      DefaultNewlinePlaceholder,
		MediaOmittedPlaceholder: DefaultMediaOmittedPlaceholder,
		AnonymizeMentions:       true,
		Location:                time.UTC,
	}
}

// Validate проверяет значения перечислений и заполнителей.
func (o *Options) Validate() error {
	if _, err := ParsePlatform(string(o.Platform)); err != nil {
		return err
	}
	if _, err := ParseLanguage(string(o.Language)); err != nil {
		return err
	}
	switch o.SmileyStrategy {
	case SmileyBuiltin, SmileyDictionary:
	default:
		return fmt.Errorf("unsupported smiley strategy %q", o.SmileyStrategy)
	}
	switch o.URLMode {
	case URLFull, URLDomain:
	default:
		return fmt.Errorf("unsupported url mode %q", o.URLMode)
	}
	switch o.AnonMode {
	case AnonOff, AnonReplace, AnonAdd:
	default:
		return fmt.Errorf("unsupported anonymization mode %q", o.AnonMode)
	}
	switch o.Order {
	case OrderNone, OrderTime, OrderOriginal, OrderBoth:
	default:
		return fmt.Errorf("unsupported order %q", o.Order)
	}
	if strings.TrimSpace(o.NewlinePlaceholder) == "" {
		return fmt.Errorf("newline placeholder must not be blank")
	}
	if strings.TrimSpace(o.MediaOmittedPlaceholder) == "" {
		return fmt.Errorf("media omitted placeholder must not be blank")
	}
	return nil
}

// WithDefaults заполняет пустые поля значениями по умолчанию.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Platform == "" {
		o.Platform = d.Platform
	}
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.SmileyStrategy == "" {
		o.SmileyStrategy = d.SmileyStrategy
	}
	if o.URLMode == "" {
		o.URLMode = d.URLMode
	}
	if o.AnonMode == "" {
		o.AnonMode = d.AnonMode
	}
	if o.Order == "" {
		o.Order = d.Order
	}
	if o.NewlinePlaceholder == "" {
		o.NewlinePlaceholder = d.NewlinePlaceholder
	}
	if o.MediaOmittedPlaceholder == "" {
		o.MediaOmittedPlaceholder = d.MediaOmittedPlaceholder
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}
