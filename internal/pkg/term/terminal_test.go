package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Choose(t *testing.T) {
	options := []string{"android", "ios"}

	t.Run("по номеру", func(t *testing.T) {
		var out bytes.Buffer
		choice, err := NewTerminalWith(strings.NewReader("2\n"), &out).Choose("Platform?", options)
		require.NoError(t, err)
		assert.Equal(t, "ios", choice)
		assert.Contains(t, out.String(), "  1) android")
	})

	t.Run("по имени без учета регистра", func(t *testing.T) {
		choice, err := NewTerminalWith(strings.NewReader("Android\n"), &bytes.Buffer{}).Choose("Platform?", options)
		require.NoError(t, err)
		assert.Equal(t, "android", choice)
	})

	t.Run("повтор после неверного ввода", func(t *testing.T) {
		var out bytes.Buffer
		choice, err := NewTerminalWith(strings.NewReader("7\nios\n"), &out).Choose("Platform?", options)
		require.NoError(t, err)
		assert.Equal(t, "ios", choice)
		assert.Contains(t, out.String(), `Unknown choice "7"`)
	})

	t.Run("последняя строка без перевода строки", func(t *testing.T) {
		choice, err := NewTerminalWith(strings.NewReader("1"), &bytes.Buffer{}).Choose("Platform?", options)
		require.NoError(t, err)
		assert.Equal(t, "android", choice)
	})

	t.Run("конец ввода", func(t *testing.T) {
		_, err := NewTerminalWith(strings.NewReader(""), &bytes.Buffer{}).Choose("Platform?", options)
		assert.Error(t, err)
	})

	t.Run("нет вариантов", func(t *testing.T) {
		_, err := NewTerminalWith(strings.NewReader("1\n"), &bytes.Buffer{}).Choose("Platform?", nil)
		assert.Error(t, err)
	})
}

func TestTerminal_Width(t *testing.T) {
	tm := NewTerminalWith(strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, 120, tm.Width(120))
	assert.True(t, tm.IsInteractive())
}
