package services

import (
	"fmt"
	"sort"
	"strings"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// pseudonymPrefix — префикс псевдонимов участников: Person_1, Person_2, ...
const pseudonymPrefix = "Person_"

// Pseudonyms — взаимно однозначное отображение имен участников на псевдонимы.
type Pseudonyms struct {
	byName  map[string]string
	ordered []string
}

func newPseudonyms() *Pseudonyms {
	return &Pseudonyms{byName: make(map[string]string)}
}

func (p *Pseudonyms) assign(name string) {
	if name == "" {
		return
	}
	if _, ok := p.byName[name]; ok {
		return
	}
	p.ordered = append(p.ordered, name)
	p.byName[name] = fmt.Sprintf("%s%d", pseudonymPrefix, len(p.ordered))
}

// Lookup возвращает псевдоним участника.
func (p *Pseudonyms) Lookup(name string) (string, bool) {
	v, ok := p.byName[name]
	return v, ok
}

// Names возвращает имена в порядке назначения псевдонимов.
func (p *Pseudonyms) Names() []string {
	return append([]string(nil), p.ordered...)
}

// Len возвращает количество назначенных псевдонимов.
func (p *Pseudonyms) Len() int {
	return len(p.ordered)
}

// replacer заменяет имена на псевдонимы за один проход, начиная с самых длинных.
func (p *Pseudonyms) replacer() *strings.Replacer {
	names := p.Names()
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	pairs := make([]string, 0, 2*len(names))
	for _, n := range names {
		pairs = append(pairs, n, p.byName[n])
	}
	return strings.NewReplacer(pairs...)
}

// Anonymizer назначает псевдонимы отправителям и участникам,
// упомянутым только в служебных сообщениях.
type Anonymizer struct {
	ind          *resources.Indicators
	senderEvents []*resources.EventPattern
	mentions     bool
}

// NewAnonymizer создает анонимизатор. mentions включает второй проход
// по именам из служебных сообщений.
func NewAnonymizer(ind *resources.Indicators, mentions bool) *Anonymizer {
	return &Anonymizer{ind: ind, senderEvents: ind.SenderEvents(), mentions: mentions}
}

// BuildPseudonyms строит отображение: сначала отправители в порядке первого
// появления, затем имена из групп actor/target служебных сообщений.
func (a *Anonymizer) BuildPseudonyms(records []domain.MessageRecord) *Pseudonyms {
	p := newPseudonyms()
	for i := range records {
		if !records[i].IsSystem() {
			p.assign(records[i].Sender)
		}
	}
	if !a.mentions {
		return p
	}

	for i := range records {
		ev := records[i].SystemEvent
		if ev == nil || !records[i].IsSystem() {
			continue
		}
		for _, name := range a.mentionedNames(ev.Text) {
			p.assign(name)
		}
	}
	return p
}

// mentionedNames извлекает имена из текста служебного сообщения.
// Ссылки на самого экспортирующего ("You", "Du") пропускаются.
func (a *Anonymizer) mentionedNames(text string) []string {
	for _, pat := range a.senderEvents {
		groups, ok := pat.Match(text)
		if !ok {
			continue
		}
		var names []string
		for _, key := range []string{"actor", "target"} {
			for _, n := range a.splitNames(groups[key]) {
				if !a.ind.IsSelfReference(n) {
					names = append(names, n)
				}
			}
		}
		return names
	}
	return nil
}

// splitNames разбивает перечисление "A, B and C" на отдельные имена.
func (a *Anonymizer) splitNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{s}
	if conj := a.ind.ListConjunction; conj != "" {
		parts = splitAll(parts, conj)
	}
	parts = splitAll(parts, ", ")

	out := parts[:0]
	for _, n := range parts {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func splitAll(parts []string, sep string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, strings.Split(p, sep)...)
	}
	return out
}

// Apply анонимизирует таблицу в выбранном режиме и возвращает отображение.
// В режиме AnonOff таблица не меняется, возвращается nil.
func (a *Anonymizer) Apply(table *domain.ChatTable, mode domain.AnonMode) *Pseudonyms {
	if mode == domain.AnonOff || mode == "" {
		return nil
	}

	p := a.BuildPseudonyms(table.Records)
	rep := p.replacer()

	for i := range table.Records {
		r := &table.Records[i]
		pseudonym := domain.SystemSender
		if !r.IsSystem() {
			pseudonym = p.byName[r.Sender]
		}

		if r.SystemEvent != nil {
			r.SystemEvent.Text = rep.Replace(r.SystemEvent.Text)
		}

		switch mode {
		case domain.AnonReplace:
			r.Sender = pseudonym
		case domain.AnonAdd:
			r.Anonymous = pseudonym
		}
	}
	table.HasAnonymous = mode == domain.AnonAdd
	return p
}
