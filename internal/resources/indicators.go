package resources

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"whatsapp-chat-parser/internal/domain"
)

// Область применения шаблона служебного сообщения.
const (
	// ScopeSender — шаблон проверяется на всем остатке строки или на кандидате в отправители.
	ScopeSender = "sender"
	// ScopeBody — шаблон проверяется на теле сообщения обычного отправителя.
	ScopeBody = "body"
)

// Порядок дня и месяца в датах с разделителем "/".
const (
	DateOrderMDY = "MDY"
	DateOrderDMY = "DMY"
)

// EventPattern — шаблон одного вида служебного сообщения.
type EventPattern struct {
	Kind    domain.EventKind `yaml:"kind"`
	Scope   string           `yaml:"scope"`
	Pattern string           `yaml:"pattern"`

	re *regexp.Regexp
}

// Match проверяет текст и возвращает именованные группы шаблона.
func (p *EventPattern) Match(text string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name != "" && m[i] != "" {
			groups[name] = m[i]
		}
	}
	return groups, true
}

// Indicators — строка таблицы индикаторов для пары (язык, платформа).
type Indicators struct {
	Language        domain.Language `yaml:"language"`
	Platform        domain.Platform `yaml:"platform"`
	SlashDateOrder  string          `yaml:"slash_date_order"`
	Markers         []string        `yaml:"markers"`
	MediaOmitted    []string        `yaml:"media_omitted"`
	AttachedFile    string          `yaml:"attached_file"`
	Location        string          `yaml:"location"`
	LiveLocation    string          `yaml:"live_location"`
	MissedCall      string          `yaml:"missed_call"`
	SelfReferences  []string        `yaml:"self_references"`
	ListConjunction string          `yaml:"list_conjunction"`
	SystemEvents    []EventPattern  `yaml:"system_events"`

	AttachedFileRe *regexp.Regexp `yaml:"-"`
	LocationRe     *regexp.Regexp `yaml:"-"`
	LiveLocationRe *regexp.Regexp `yaml:"-"`
	MissedCallRe   *regexp.Regexp `yaml:"-"`
}

// SenderEvents возвращает шаблоны, проверяемые без отправителя.
func (ind *Indicators) SenderEvents() []*EventPattern {
	return ind.eventsByScope(ScopeSender)
}

// BodyEvents возвращает шаблоны, проверяемые на теле сообщения.
func (ind *Indicators) BodyEvents() []*EventPattern {
	return ind.eventsByScope(ScopeBody)
}

func (ind *Indicators) eventsByScope(scope string) []*EventPattern {
	var out []*EventPattern
	for i := range ind.SystemEvents {
		if ind.SystemEvents[i].Scope == scope {
			out = append(out, &ind.SystemEvents[i])
		}
	}
	return out
}

// IsSelfReference сообщает, обозначает ли имя самого экспортирующего ("You", "Du").
func (ind *Indicators) IsSelfReference(name string) bool {
	for _, s := range ind.SelfReferences {
		if name == s {
			return true
		}
	}
	return false
}

// CountMarkers считает вхождения маркеров языка в образце текста.
func (ind *Indicators) CountMarkers(sample string) int {
	n := 0
	for _, m := range ind.Markers {
		if m != "" {
			n += strings.Count(sample, m)
		}
	}
	return n
}

func (ind *Indicators) compile() error {
	var err error
	compileOpt := func(field, expr string) *regexp.Regexp {
		if err != nil || expr == "" {
			return nil
		}
		re, cErr := regexp.Compile(expr)
		if cErr != nil {
			err = fmt.Errorf("%s/%s: invalid %s pattern: %w", ind.Language, ind.Platform, field, cErr)
			return nil
		}
		return re
	}

	ind.AttachedFileRe = compileOpt("attached_file", ind.AttachedFile)
	ind.LocationRe = compileOpt("location", ind.Location)
	ind.LiveLocationRe = compileOpt("live_location", ind.LiveLocation)
	ind.MissedCallRe = compileOpt("missed_call", ind.MissedCall)
	if err != nil {
		return err
	}
	if ind.AttachedFileRe != nil && ind.AttachedFileRe.SubexpIndex("file") < 0 {
		return fmt.Errorf("%s/%s: attached_file pattern has no (?P<file>...) group", ind.Language, ind.Platform)
	}

	switch ind.SlashDateOrder {
	case "":
		ind.SlashDateOrder = DateOrderDMY
	case DateOrderMDY, DateOrderDMY:
	default:
		return fmt.Errorf("%s/%s: unknown slash_date_order %q", ind.Language, ind.Platform, ind.SlashDateOrder)
	}

	for i := range ind.SystemEvents {
		e := &ind.SystemEvents[i]
		if !e.Kind.Valid() {
			return fmt.Errorf("%s/%s: unknown system event kind %q", ind.Language, ind.Platform, e.Kind)
		}
		if e.Scope == "" {
			e.Scope = ScopeSender
		}
		if e.Scope != ScopeSender && e.Scope != ScopeBody {
			return fmt.Errorf("%s/%s: unknown scope %q for %s", ind.Language, ind.Platform, e.Scope, e.Kind)
		}
		re, cErr := regexp.Compile(e.Pattern)
		if cErr != nil {
			return fmt.Errorf("%s/%s: invalid pattern for %s: %w", ind.Language, ind.Platform, e.Kind, cErr)
		}
		e.re = re
	}
	return nil
}

// IndicatorTable — набор строк индикаторов, по одной на пару (язык, платформа).
type IndicatorTable struct {
	rows []*Indicators
}

// LoadIndicatorTable читает таблицу индикаторов в формате YAML и компилирует шаблоны.
func LoadIndicatorTable(r io.Reader) (*IndicatorTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read indicator table: %w", err)
	}

	var rows []*Indicators
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse indicator table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("indicator table is empty")
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.Language == "" {
			return nil, fmt.Errorf("indicator row without language")
		}
		if row.Platform != domain.PlatformAndroid && row.Platform != domain.PlatformIOS {
			return nil, fmt.Errorf("%s: %w: %q", row.Language, domain.ErrUnsupportedPlatform, row.Platform)
		}
		key := string(row.Language) + "/" + string(row.Platform)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate indicator row %s", key)
		}
		seen[key] = struct{}{}

		if err := row.compile(); err != nil {
			return nil, err
		}
	}

	return &IndicatorTable{rows: rows}, nil
}

// Lookup возвращает строку индикаторов для пары (язык, платформа).
func (t *IndicatorTable) Lookup(lang domain.Language, platform domain.Platform) (*Indicators, error) {
	for _, row := range t.rows {
		if row.Language == lang && row.Platform == platform {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %s", domain.ErrUnsupportedLanguage, lang, platform)
}

// ForPlatform возвращает строки индикаторов платформы, упорядоченные по языку.
func (t *IndicatorTable) ForPlatform(platform domain.Platform) []*Indicators {
	var out []*Indicators
	for _, row := range t.rows {
		if row.Platform == platform {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

// Languages возвращает все языки таблицы без повторов.
func (t *IndicatorTable) Languages() []domain.Language {
	seen := make(map[domain.Language]struct{})
	var out []domain.Language
	for _, row := range t.rows {
		if _, ok := seen[row.Language]; !ok {
			seen[row.Language] = struct{}{}
			out = append(out, row.Language)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
