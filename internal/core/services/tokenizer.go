package services

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenize разбивает упрощенный текст на слова по границам UAX #29.
// Сегменты без букв и цифр (пробелы, пунктуация) отбрасываются.
func Tokenize(flat string) []string {
	if flat == "" {
		return nil
	}

	var tokens []string
	segments := words.FromString(flat)
	for segments.Next() {
		w := segments.Value()
		if isWord(w) {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
