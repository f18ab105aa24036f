package services

import (
	"regexp"
	"sort"
	"strings"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// builtinSmileyRe — встроенная грамматика текстовых смайликов; применяется к токену целиком.
var builtinSmileyRe = regexp.MustCompile(`^(?:` +
	`[>O0]?[:;=]['"]?[-o^]?[)(\][DPpOo0/\\|*$@3]` + // :) ;-) :'( >:( O:)
	`|[xX8B]-?[)DP]` + // xD 8) B-)
	`|[(\[][-o^]?[:;=]` + // (: (-:
	`|</?3+` + // <3 </3
	`|\^[_.-]?\^` + // ^^ ^_^
	`|-_-|[oO0][._][oO0]|T[._]T|;_;` +
	`)$`)

// smileyMatcher проверяет токен по выбранной стратегии.
type smileyMatcher func(token string) bool

func newSmileyMatcher(strategy domain.SmileyStrategy, dict *resources.SmileyDictionary) smileyMatcher {
	if strategy == domain.SmileyDictionary && dict != nil {
		return dict.Contains
	}
	return builtinSmileyRe.MatchString
}

// extractSmilies разбивает текст по пробелам, собирает токены-смайлики
// и возвращает текст без них. Найденный смайлик вырезается и из остальных
// токенов ("xDDD" после "xD"), чтобы не остаться в упрощенном тексте.
func extractSmilies(text string, match smileyMatcher) ([]string, string) {
	fields := strings.Fields(text)
	kept := fields[:0]
	var found []string
	for _, f := range fields {
		if match(f) {
			found = append(found, f)
			continue
		}
		kept = append(kept, f)
	}

	rest := strings.Join(kept, " ")
	if len(found) == 0 {
		return nil, rest
	}

	// Замена на пробел не склеивает соседние фрагменты, поэтому одного прохода достаточно.
	bySize := append([]string(nil), found...)
	sort.Slice(bySize, func(i, j int) bool { return len(bySize[i]) > len(bySize[j]) })
	for _, s := range bySize {
		rest = strings.ReplaceAll(rest, s, " ")
	}
	return found, strings.Join(strings.Fields(rest), " ")
}
