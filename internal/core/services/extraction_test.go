package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

func newTestExtractor(t *testing.T, mutate func(*domain.Options)) *Extractor {
	t.Helper()
	opts := domain.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	return NewExtractor(indicatorsFor(t, domain.LanguageEnglish, domain.PlatformAndroid), resources.MustDefault(), opts)
}

func extracted(e *Extractor, raw string) domain.MessageRecord {
	rec := domain.MessageRecord{Sender: "Alice", RawMessage: &raw}
	e.Extract(&rec)
	return rec
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("ссылки, эмодзи и токены", func(t *testing.T) {
		e := newTestExtractor(t, func(o *domain.Options) { o.URLMode = domain.URLDomain })
		rec := extracted(e, "Hi 😀 check http://example.com/page")

		assert.Equal(t, []string{"http://example.com/"}, rec.URLs)
		assert.Equal(t, []domain.Emoji{{Glyph: "😀", Description: "grinning face"}}, rec.Emoji)
		require.NotNil(t, rec.FlatMessage)
		assert.Equal(t, "Hi check", *rec.FlatMessage)
		assert.Equal(t, []string{"Hi", "check"}, rec.Tokens)
		assert.Equal(t, 2, rec.TokenCount)
	})

	t.Run("полная ссылка без завершающей пунктуации", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "see https://example.com/a?b=1. ok")
		assert.Equal(t, []string{"https://example.com/a?b=1"}, rec.URLs)
		assert.Equal(t, "see ok", rec.Flat())
	})

	t.Run("сокращение www-ссылки отбрасывается", func(t *testing.T) {
		e := newTestExtractor(t, func(o *domain.Options) { o.URLMode = domain.URLDomain })
		rec := extracted(e, "visit www.example.com/page now")
		assert.Empty(t, rec.URLs)
		assert.Equal(t, "visit now", rec.Flat())
	})

	t.Run("прикрепленный файл и подпись", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "IMG-20210201-WA0001.jpg (file attached)"+ph+"nice pic")
		assert.Equal(t, []string{"IMG-20210201-WA0001.jpg"}, rec.MediaRefs)
		assert.Equal(t, "nice pic", rec.Flat())
	})

	t.Run("пропущенное вложение", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), domain.DefaultMediaOmittedPlaceholder)
		assert.Nil(t, rec.FlatMessage)
		assert.Empty(t, rec.Tokens)
		assert.Zero(t, rec.TokenCount)
	})

	t.Run("статическая геопозиция", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "location: https://maps.google.com/?q=52.5200,13.4050")
		require.NotNil(t, rec.Location)
		assert.Equal(t, domain.LocationStatic, rec.Location.Kind)
		require.NotNil(t, rec.Location.Latitude)
		require.NotNil(t, rec.Location.Longitude)
		assert.InDelta(t, 52.52, *rec.Location.Latitude, 1e-9)
		assert.InDelta(t, 13.405, *rec.Location.Longitude, 1e-9)
		assert.Nil(t, rec.FlatMessage)
	})

	t.Run("первая по положению отметка местоположения", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "live location shared then location: https://maps.google.com/?q=1,2")
		require.NotNil(t, rec.Location)
		assert.Equal(t, domain.LocationLive, rec.Location.Kind)
		assert.Equal(t, "then", rec.Flat())
	})

	t.Run("пропущенный звонок", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "Missed voice call")
		assert.Nil(t, rec.FlatMessage)
	})

	t.Run("встроенная грамматика смайликов", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "great :) see you ;-) <3")
		assert.Equal(t, []string{":)", ";-)", "<3"}, rec.Smilies)
		assert.Equal(t, "great see you", rec.Flat())
	})

	t.Run("смайлик вырезается и из соседних слов", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "xD xDDD ok")
		assert.Equal(t, []string{"xD"}, rec.Smilies)
		assert.Equal(t, "DD ok", rec.Flat())
		assert.NotContains(t, rec.Flat(), "xD")
	})

	t.Run("словарь смайликов", func(t *testing.T) {
		e := newTestExtractor(t, func(o *domain.Options) { o.SmileyStrategy = domain.SmileyDictionary })
		rec := extracted(e, "hi <3 and :-#")
		assert.Equal(t, []string{"<3", ":-#"}, rec.Smilies)
	})

	t.Run("эмодзи с оттенком кожи и селектором варианта", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "👍🏽 ok ❤️ 👋🏽")
		require.Len(t, rec.Emoji, 3)
		assert.Equal(t, "thumbs up: medium skin tone", rec.Emoji[0].Description)
		assert.Equal(t, "red heart", rec.Emoji[1].Description)
		assert.Equal(t, "waving hand: medium skin tone", rec.Emoji[2].Description)
		assert.Equal(t, "ok", rec.Flat())
	})

	t.Run("повторы эмодзи сохраняются", func(t *testing.T) {
		rec := extracted(newTestExtractor(t, nil), "😀😀")
		assert.Len(t, rec.Emoji, 2)
		assert.Nil(t, rec.FlatMessage)
	})

	t.Run("без текста поля остаются пустыми", func(t *testing.T) {
		rec := domain.MessageRecord{Sender: domain.SystemSender}
		newTestExtractor(t, nil).Extract(&rec)
		assert.Nil(t, rec.FlatMessage)
		assert.Empty(t, rec.Tokens)
		assert.Zero(t, rec.TokenCount)
	})

	t.Run("извлеченные значения отсутствуют в упрощенном тексте", func(t *testing.T) {
		raw := "IMG-1.jpg (file attached)" + ph + "Look 😀 :D https://example.com/x?y=z and www.test.org" + ph + "Missed video call"
		rec := extracted(newTestExtractor(t, nil), raw)
		flat := rec.Flat()
		require.NotEmpty(t, flat)

		var values []string
		values = append(values, rec.URLs...)
		values = append(values, rec.MediaRefs...)
		values = append(values, rec.Smilies...)
		values = append(values, rec.EmojiGlyphs()...)
		require.NotEmpty(t, values)
		for _, v := range values {
			assert.False(t, strings.Contains(flat, v), "%q found in %q", v, flat)
		}
		assert.NotContains(t, flat, strings.TrimSpace(ph))
		assert.Equal(t, len(rec.Tokens), rec.TokenCount)
	})
}

func TestReduceToDomain(t *testing.T) {
	testCases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"http://example.com/page", "http://example.com/", true},
		{"https://example.com", "https://example.com/", true},
		{"https://sub.example.com/a/b/c", "https://sub.example.com/", true},
		{"www.example.com/page", "", false},
		{"http:///path", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := reduceToDomain(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Equal(t, []string{"über", "42", "Straße"}, Tokenize("über 42 Straße"))
	assert.Equal(t, []string{"Hi", "check"}, Tokenize("Hi check"))
}

func TestBuiltinSmileyGrammar(t *testing.T) {
	for _, s := range []string{":)", ":-)", ";)", ":D", "xD", ":'(", ":P", ":/", "<3", "</3", "^^", "^_^", "-_-", "o_O", "(:", "B-)", ">:("} {
		assert.True(t, builtinSmileyRe.MatchString(s), s)
	}
	for _, s := range []string{"hello", ":", "a:)", "10:30", "http://x"} {
		assert.False(t, builtinSmileyRe.MatchString(s), s)
	}
}
