package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

const ph = domain.DefaultNewlinePlaceholder

func TestSegmentText(t *testing.T) {
	t.Run("android: многострочное сообщение и преамбула", func(t *testing.T) {
		preamble := "Exported chat\n"
		text := preamble +
			"01.02.21, 14:30 - Alice: Hi\nsecond line\n" +
			"01.02.21, 14:31 - Bob: Yo\n"

		segments, pre := SegmentText(text, domain.PlatformAndroid, ph)
		require.Len(t, segments, 2)
		assert.Equal(t, len(preamble), pre)

		assert.Equal(t, "01.02.21", segments[0].Date)
		assert.Equal(t, "14:30", segments[0].Clock)
		assert.Equal(t, "Alice: Hi"+ph+"second line"+ph, segments[0].Body)
		assert.Equal(t, 1, segments[1].Index)
		assert.NotContains(t, segments[0].Text(), "\n")

		assert.Equal(t, text[len(preamble):], JoinSegments(segments, ph))
	})

	t.Run("ios: метка слева направо и секунды", func(t *testing.T) {
		text := "[01.02.21, 14:30:05] Alice: Hi\n\u200e[01.02.21, 14:31:00] Bob: \u200eimage omitted"

		segments, pre := SegmentText(text, domain.PlatformIOS, ph)
		require.Len(t, segments, 2)
		assert.Zero(t, pre)
		assert.Equal(t, "14:30:05", segments[0].Clock)
		assert.Equal(t, text, JoinSegments(segments, ph))
	})

	t.Run("12-часовой формат", func(t *testing.T) {
		text := "1/2/21, 2:30 PM - Alice: Hi\n1/2/21, 2:31 PM - Bob: Hey"

		segments, _ := SegmentText(text, domain.PlatformAndroid, ph)
		require.Len(t, segments, 2)
		assert.Equal(t, "2:30 PM", segments[0].Clock)
		assert.Equal(t, "2:31 PM", segments[1].Clock)
	})

	t.Run("без заголовков блоков нет, ошибки тоже", func(t *testing.T) {
		text := "just some text\nwithout headers"
		segments, pre := SegmentText(text, domain.PlatformAndroid, ph)
		assert.Empty(t, segments)
		assert.Equal(t, len(text), pre)
	})

	t.Run("заголовки другой платформы не считаются", func(t *testing.T) {
		text := "[01.02.21, 14:30:05] Alice: Hi"
		assert.Zero(t, CountHeaders(text, domain.PlatformAndroid))
		assert.Equal(t, 1, CountHeaders(text, domain.PlatformIOS))
	})
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name  string
		date  string
		clock string
		order string
		want  time.Time
	}{
		{"точки, 24 часа", "01.02.21", "14:30", resources.DateOrderMDY, time.Date(2021, 2, 1, 14, 30, 0, 0, time.UTC)},
		{"секунды", "01.02.2021", "14:30:05", resources.DateOrderDMY, time.Date(2021, 2, 1, 14, 30, 5, 0, time.UTC)},
		{"слеш MDY", "1/2/21", "2:30 PM", resources.DateOrderMDY, time.Date(2021, 1, 2, 14, 30, 0, 0, time.UTC)},
		{"слеш DMY", "1/2/21", "2:30 PM", resources.DateOrderDMY, time.Date(2021, 2, 1, 14, 30, 0, 0, time.UTC)},
		{"полночь с точками", "12/31/2020", "12:05 a.m.", resources.DateOrderMDY, time.Date(2020, 12, 31, 0, 5, 0, 0, time.UTC)},
		{"полдень", "31-12-20", "12:00 pm", resources.DateOrderMDY, time.Date(2020, 12, 31, 12, 0, 0, 0, time.UTC)},
		{"слеш DMY при порядке MDY", "25/12/2021", "14:30", resources.DateOrderMDY, time.Date(2021, 12, 25, 14, 30, 0, 0, time.UTC)},
		{"слеш MDY при порядке DMY", "12/25/21", "14:30", resources.DateOrderDMY, time.Date(2021, 12, 25, 14, 30, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTimestamp(tc.date, tc.clock, tc.order, time.UTC)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	errorCases := []struct {
		name  string
		date  string
		clock string
	}{
		{"день вне диапазона", "32.01.21", "10:00"},
		{"месяц вне диапазона", "01.13.21", "10:00"},
		{"30 февраля", "30.02.21", "10:00"},
		{"час вне диапазона", "01.02.21", "25:00"},
		{"13 PM", "01.02.21", "13:00 PM"},
		{"минуты вне диапазона", "01.02.21", "10:61"},
		{"трехзначный год", "01.02.121", "10:00"},
		{"смешанные разделители", "01.02-21", "10:00"},
		{"слеш вне диапазона в обоих порядках", "13/13/21", "10:00"},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTimestamp(tc.date, tc.clock, resources.DateOrderDMY, time.UTC)
			assert.Error(t, err)
		})
	}

	t.Run("часовой пояс из опций", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		got, err := parseTimestamp("01.02.21", "14:30", resources.DateOrderDMY, loc)
		require.NoError(t, err)
		assert.Equal(t, 13, got.UTC().Hour())
	})
}

func TestDetectSlashDateOrder(t *testing.T) {
	segs := func(dates ...string) []Segment {
		out := make([]Segment, len(dates))
		for i, d := range dates {
			out[i] = Segment{Index: i, Date: d}
		}
		return out
	}

	testCases := []struct {
		name     string
		dates    []string
		fallback string
		want     string
	}{
		{"день больше 12", []string{"01/02/21", "25/12/21"}, resources.DateOrderMDY, resources.DateOrderDMY},
		{"месяц больше 12 во втором поле", []string{"12/25/21"}, resources.DateOrderDMY, resources.DateOrderMDY},
		{"нет свидетельства", []string{"01/02/21", "03/04/21"}, resources.DateOrderMDY, resources.DateOrderMDY},
		{"противоречивые даты", []string{"25/12/21", "12/25/21"}, resources.DateOrderMDY, resources.DateOrderMDY},
		{"даты с точками не учитываются", []string{"25.12.21"}, resources.DateOrderMDY, resources.DateOrderMDY},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectSlashDateOrder(segs(tc.dates...), tc.fallback))
		})
	}
}
