package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"whatsapp-chat-parser/internal/domain"
)

type mockChatParser struct {
	mock.Mock
}

func (m *mockChatParser) Parse(ctx context.Context, text string, opts domain.Options) (*domain.ParseResult, error) {
	args := m.Called(ctx, text, opts)
	res, _ := args.Get(0).(*domain.ParseResult)
	return res, args.Error(1)
}

func (m *mockChatParser) Detect(text string, opts domain.Options) (*domain.Detection, error) {
	args := m.Called(text, opts)
	det, _ := args.Get(0).(*domain.Detection)
	return det, args.Error(1)
}

func TestDecode(t *testing.T) {
	t.Run("UTF-8 с BOM", func(t *testing.T) {
		text, err := Decode([]byte("\xef\xbb\xbf01.02.21, 14:30 - Alice: Hi"))
		require.NoError(t, err)
		assert.Equal(t, "01.02.21, 14:30 - Alice: Hi", text)
	})

	t.Run("UTF-16 LE с BOM", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.Bytes([]byte("Grüße 😀"))
		require.NoError(t, err)

		text, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "Grüße 😀", text)
	})

	t.Run("UTF-16 BE с BOM", func(t *testing.T) {
		enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.Bytes([]byte("Hallo"))
		require.NoError(t, err)

		text, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "Hallo", text)
	})

	t.Run("переводы строк нормализуются", func(t *testing.T) {
		text, err := Decode([]byte("a\r\nb\rc\n"))
		require.NoError(t, err)
		assert.Equal(t, "a\nb\nc\n", text)
	})

	t.Run("NFC", func(t *testing.T) {
		text, err := Decode([]byte("Gru\u0308\u00dfe"))
		require.NoError(t, err)
		assert.Equal(t, "Gr\u00fc\u00dfe", text)
	})
}

func TestTextParser(t *testing.T) {
	ctx := context.Background()
	opts := domain.DefaultOptions()

	t.Run("Parse передает декодированный текст", func(t *testing.T) {
		chat := new(mockChatParser)
		want := &domain.ParseResult{Table: &domain.ChatTable{}, Diagnostics: &domain.Diagnostics{}}
		chat.On("Parse", ctx, "line1\nline2", opts).Return(want, nil)

		got, err := NewTextParser(chat).Parse(ctx, []byte("line1\r\nline2"), opts)
		require.NoError(t, err)
		assert.Same(t, want, got)
		chat.AssertExpectations(t)
	})

	t.Run("Detect передает ошибку разбора", func(t *testing.T) {
		chat := new(mockChatParser)
		chat.On("Detect", "text", opts).Return(nil, domain.ErrAmbiguousFormat)

		det, err := NewTextParser(chat).Detect(ctx, []byte("text"), opts)
		assert.Nil(t, det)
		assert.ErrorIs(t, err, domain.ErrAmbiguousFormat)
		chat.AssertExpectations(t)
	})
}
