package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

func indicatorsFor(t *testing.T, lang domain.Language, platform domain.Platform) *resources.Indicators {
	t.Helper()
	ind, err := resources.MustDefault().Indicators.Lookup(lang, platform)
	require.NoError(t, err)
	return ind
}

func androidSegment(body string) Segment {
	return Segment{Header: "01.02.21, 14:30 - ", Date: "01.02.21", Clock: "14:30", Body: body}
}

func TestDetectPlatform(t *testing.T) {
	t.Run("android побеждает по числу заголовков", func(t *testing.T) {
		sample := "01.02.21, 14:30 - Alice: Hi\n01.02.21, 14:31 - Bob: Yo\n[01.02.21, 14:32:00] Carol: quoted"
		p, counts, err := DetectPlatform(sample)
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformAndroid, p)
		assert.Equal(t, 2, counts[domain.PlatformAndroid])
		assert.Equal(t, 1, counts[domain.PlatformIOS])
	})

	t.Run("ios", func(t *testing.T) {
		p, _, err := DetectPlatform("[01.02.21, 14:30:05] Alice: Hi\n[01.02.21, 14:31:05] Bob: Yo")
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformIOS, p)
	})

	t.Run("ничья дает AmbiguousFormat", func(t *testing.T) {
		_, _, err := DetectPlatform("01.02.21, 14:30 - Alice: Hi\n[01.02.21, 14:31:05] Bob: Yo")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAmbiguousFormat)

		var ambiguous *domain.AmbiguousFormatError
		require.True(t, errors.As(err, &ambiguous))
		assert.Equal(t, 1, ambiguous.AndroidCount)
		assert.Equal(t, 1, ambiguous.IOSCount)
	})

	t.Run("пустой текст тоже ничья", func(t *testing.T) {
		_, _, err := DetectPlatform("")
		assert.ErrorIs(t, err, domain.ErrAmbiguousFormat)
	})
}

func TestDetectLanguage(t *testing.T) {
	table := resources.MustDefault().Indicators

	t.Run("english", func(t *testing.T) {
		sample := "01.02.21, 14:30 - Alice: <Media omitted>\n01.02.21, 14:31 - Bob: This message was deleted"
		l, counts, err := DetectLanguage(sample, domain.PlatformAndroid, table)
		require.NoError(t, err)
		assert.Equal(t, domain.LanguageEnglish, l)
		assert.Equal(t, 2, counts[domain.LanguageEnglish])
	})

	t.Run("german", func(t *testing.T) {
		sample := "01.02.21, 14:30 - Alice: <Medien ausgeschlossen>\n01.02.21, 14:31 - Bob hat die Gruppe verlassen"
		l, _, err := DetectLanguage(sample, domain.PlatformAndroid, table)
		require.NoError(t, err)
		assert.Equal(t, domain.LanguageGerman, l)
	})

	t.Run("нет признаков", func(t *testing.T) {
		_, counts, err := DetectLanguage("01.02.21, 14:30 - Alice: Hi", domain.PlatformAndroid, table)
		assert.ErrorIs(t, err, domain.ErrAmbiguousLanguage)
		assert.Zero(t, counts[domain.LanguageEnglish])
		assert.Zero(t, counts[domain.LanguageGerman])
	})

	t.Run("resolveFormat оборачивает ошибку стадией", func(t *testing.T) {
		opts := domain.DefaultOptions()
		opts.Platform = domain.PlatformAndroid
		_, err := resolveFormat("01.02.21, 14:30 - Alice: Hi", opts, table, DefaultSampleSize)

		var stageErr *domain.StageError
		require.True(t, errors.As(err, &stageErr))
		assert.Equal(t, domain.StageDetectLanguage, stageErr.Stage)
	})

	t.Run("resolveFormat с явными значениями не считает совпадения", func(t *testing.T) {
		opts := domain.DefaultOptions()
		opts.Platform = domain.PlatformIOS
		opts.Language = domain.LanguageGerman
		det, err := resolveFormat("anything", opts, table, DefaultSampleSize)
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformIOS, det.Platform)
		assert.Nil(t, det.PlatformCounts)
		assert.Nil(t, det.LanguageCounts)
	})

	t.Run("неподдерживаемый язык", func(t *testing.T) {
		opts := domain.DefaultOptions()
		opts.Platform = domain.PlatformIOS
		opts.Language = "french"
		_, err := resolveFormat("anything", opts, table, DefaultSampleSize)
		assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
	})

	t.Run("образец ограничен по символам", func(t *testing.T) {
		assert.Equal(t, "ab", sampleOf("abc", 2))
		assert.Equal(t, "äö", sampleOf("äöü", 2))
		assert.Equal(t, "abc", sampleOf("abc", 10))
	})
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(indicatorsFor(t, domain.LanguageEnglish, domain.PlatformAndroid), domain.DefaultOptions())

	t.Run("обычное сообщение", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice: Hi there"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Sender)
		require.NotNil(t, rec.RawMessage)
		assert.Equal(t, "Hi there", *rec.RawMessage)
		assert.Nil(t, rec.SystemEvent)
		assert.Equal(t, 2021, rec.Timestamp.Year())
	})

	t.Run("участник покинул группу", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Bob left" + ph))
		require.NoError(t, err)
		assert.Equal(t, domain.SystemSender, rec.Sender)
		require.NotNil(t, rec.SystemEvent)
		assert.Equal(t, domain.EventMemberLeft, rec.SystemEvent.Kind)
		assert.Equal(t, "Bob left", rec.SystemEvent.Text)
		assert.Nil(t, rec.RawMessage)
		assert.True(t, rec.IsSystem())
	})

	t.Run("участник с именем system остается участником", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("system: hello"))
		require.NoError(t, err)
		assert.Equal(t, domain.SystemSender, rec.Sender)
		assert.False(t, rec.IsSystem())
		assert.Nil(t, rec.SystemEvent)
		assert.Equal(t, "hello", rec.Message())
	})

	t.Run("самоудаляющееся вложение без текста", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice:"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Sender)
		require.NotNil(t, rec.SystemEvent)
		assert.Equal(t, domain.EventSelfDeletingMedia, rec.SystemEvent.Kind)
		assert.Nil(t, rec.RawMessage)
	})

	t.Run("удаленное сообщение сохраняет отправителя", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice: This message was deleted"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Sender)
		require.NotNil(t, rec.SystemEvent)
		assert.Equal(t, domain.EventMessageDeleted, rec.SystemEvent.Kind)
		assert.Nil(t, rec.RawMessage)
	})

	t.Run("пропущенное вложение заменяется заполнителем", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice: <Media omitted>"))
		require.NoError(t, err)
		require.NotNil(t, rec.RawMessage)
		assert.Equal(t, domain.DefaultMediaOmittedPlaceholder, *rec.RawMessage)
	})

	t.Run("двоеточие в имени участника", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Re:Zero: hi: there"))
		require.NoError(t, err)
		assert.Equal(t, "Re:Zero", rec.Sender)
		assert.Equal(t, "hi: there", rec.Message())
	})

	t.Run("служебное сообщение с остатком текста", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Bob left: extra"))
		require.NoError(t, err)
		assert.Equal(t, domain.SystemSender, rec.Sender)
		require.NotNil(t, rec.SystemEvent)
		assert.Equal(t, "Bob left", rec.SystemEvent.Text)
		assert.Equal(t, "extra", rec.Message())
	})

	t.Run("сообщение пользователя похоже на служебное", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice: I left early"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Sender)
		assert.Nil(t, rec.SystemEvent)
	})

	t.Run("многострочное сообщение теряет хвостовые заполнители", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("Alice: Hi" + ph + "second" + ph))
		require.NoError(t, err)
		assert.Equal(t, "Hi"+ph+"second", rec.Message())
	})

	t.Run("метка слева направо удаляется", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("\u200eAlice: Hi"))
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Sender)
	})

	t.Run("артефакт без отправителя", func(t *testing.T) {
		rec, err := c.Classify(androidSegment("orphan fragment"))
		require.NoError(t, err)
		assert.Empty(t, rec.Sender)
		assert.Nil(t, rec.RawMessage)
		assert.Greater(t, rec.MissingFieldCount(false), domain.PruneThreshold)
	})

	t.Run("некорректная метка времени", func(t *testing.T) {
		seg := Segment{Index: 7, Header: "32.01.21, 10:00 - ", Date: "32.01.21", Clock: "10:00", Body: "Alice: hi"}
		_, err := c.Classify(seg)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedTimestamp)

		var malformed *domain.MalformedTimestampError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 7, malformed.Index)
		assert.Equal(t, "32.01.21, 10:00 -", malformed.Prefix)
	})

	t.Run("german ios", func(t *testing.T) {
		g := NewClassifier(indicatorsFor(t, domain.LanguageGerman, domain.PlatformIOS), domain.DefaultOptions())
		seg := Segment{Header: "[01.02.21, 14:30:05] ", Date: "01.02.21", Clock: "14:30:05", Body: "Alice: \u200eBild weggelassen"}
		rec, err := g.Classify(seg)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMediaOmittedPlaceholder, rec.Message())

		seg.Body = "Alice hat Bob hinzugefügt."
		rec, err = g.Classify(seg)
		require.NoError(t, err)
		require.NotNil(t, rec.SystemEvent)
		assert.Equal(t, domain.EventMemberAdded, rec.SystemEvent.Kind)
	})
}
