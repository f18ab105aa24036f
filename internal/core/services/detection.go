package services

import (
	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// DefaultSampleSize — размер образца (в символах) для определения формата.
const DefaultSampleSize = 10000

// sampleOf возвращает первые n символов текста.
func sampleOf(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// DetectPlatform выбирает платформу с наибольшим числом совпадений заголовков.
// Равенство счетчиков, включая ноль совпадений, дает AmbiguousFormatError.
func DetectPlatform(sample string) (domain.Platform, map[domain.Platform]int, error) {
	counts := make(map[domain.Platform]int, len(domain.Platforms))
	for _, p := range domain.Platforms {
		counts[p] = CountHeaders(sample, p)
	}

	android, ios := counts[domain.PlatformAndroid], counts[domain.PlatformIOS]
	switch {
	case android > ios:
		return domain.PlatformAndroid, counts, nil
	case ios > android:
		return domain.PlatformIOS, counts, nil
	default:
		return "", counts, &domain.AmbiguousFormatError{AndroidCount: android, IOSCount: ios}
	}
}

// DetectLanguage выбирает язык, маркеры которого чаще всего встречаются в образце.
// Рассматриваются только строки индикаторов уже выбранной платформы.
func DetectLanguage(sample string, platform domain.Platform, table *resources.IndicatorTable) (domain.Language, map[domain.Language]int, error) {
	rows := table.ForPlatform(platform)
	counts := make(map[domain.Language]int, len(rows))

	var best domain.Language
	bestCount, tie := -1, false
	for _, row := range rows {
		n := row.CountMarkers(sample)
		counts[row.Language] = n
		switch {
		case n > bestCount:
			best, bestCount, tie = row.Language, n, false
		case n == bestCount:
			tie = true
		}
	}

	if len(rows) == 0 || bestCount == 0 || tie {
		return "", counts, &domain.AmbiguousLanguageError{Platform: platform, Counts: counts}
	}
	return best, counts, nil
}

// resolveFormat применяет явные значения опций и определяет недостающие по образцу.
func resolveFormat(text string, opts domain.Options, table *resources.IndicatorTable, sampleSize int) (*domain.Detection, error) {
	sample := sampleOf(text, sampleSize)
	det := &domain.Detection{Platform: opts.Platform, Language: opts.Language}

	if det.Platform == domain.PlatformAuto {
		p, counts, err := DetectPlatform(sample)
		det.PlatformCounts = counts
		if err != nil {
			return det, &domain.StageError{Stage: domain.StageDetectPlatform, Err: err}
		}
		det.Platform = p
	}

	if det.Language == domain.LanguageAuto {
		l, counts, err := DetectLanguage(sample, det.Platform, table)
		det.LanguageCounts = counts
		if err != nil {
			return det, &domain.StageError{Stage: domain.StageDetectLanguage, Err: err}
		}
		det.Language = l
	}

	if _, err := table.Lookup(det.Language, det.Platform); err != nil {
		return det, &domain.StageError{Stage: domain.StageDetectLanguage, Err: err}
	}
	return det, nil
}
