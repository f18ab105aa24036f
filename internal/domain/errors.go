package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrAmbiguousFormat     = errors.New("ambiguous export format")
	ErrAmbiguousLanguage   = errors.New("ambiguous export language")
	ErrMalformedTimestamp  = errors.New("malformed timestamp")
	// ErrEmptyResult — предупреждение, а не ошибка разбора: таблица пуста.
	ErrEmptyResult = errors.New("no messages survived pruning")
)

// Стадии конвейера для StageError.
const (
	StageOptions        = "options"
	StageDetectPlatform = "detect-platform"
	StageDetectLanguage = "detect-language"
	StageSegment        = "segment"
	StageClassify       = "classify"
	StageExtract        = "extract"
	StagePostprocess    = "postprocess"
)

// StageError указывает, на какой стадии конвейера произошел фатальный сбой.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AmbiguousFormatError возвращается, когда число совпадений шаблонов
// обеих платформ одинаково. Вызывающий код должен явно указать платформу.
type AmbiguousFormatError struct {
	AndroidCount int
	IOSCount     int
}

func (e *AmbiguousFormatError) Error() string {
	return fmt.Sprintf("%v: android=%d ios=%d matches, set the platform explicitly", ErrAmbiguousFormat, e.AndroidCount, e.IOSCount)
}

func (e *AmbiguousFormatError) Is(target error) bool {
	return target == ErrAmbiguousFormat
}

// AmbiguousLanguageError возвращается при ничьей или отсутствии признаков языка.
type AmbiguousLanguageError struct {
	Platform Platform
	Counts   map[Language]int
}

func (e *AmbiguousLanguageError) Error() string {
	langs := make([]string, 0, len(e.Counts))
	for l := range e.Counts {
		langs = append(langs, string(l))
	}
	sort.Strings(langs)

	parts := make([]string, 0, len(langs))
	for _, l := range langs {
		parts = append(parts, fmt.Sprintf("%s=%d", l, e.Counts[Language(l)]))
	}
	return fmt.Sprintf("%v on %s: %s, set the language explicitly", ErrAmbiguousLanguage, e.Platform, strings.Join(parts, " "))
}

func (e *AmbiguousLanguageError) Is(target error) bool {
	return target == ErrAmbiguousLanguage
}

// MalformedTimestampError описывает блок, метку времени которого не удалось разобрать.
type MalformedTimestampError struct {
	Index  int
	Prefix string
	Reason string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("%v in block %d (%q): %s", ErrMalformedTimestamp, e.Index, e.Prefix, e.Reason)
}

func (e *MalformedTimestampError) Is(target error) bool {
	return target == ErrMalformedTimestamp
}
