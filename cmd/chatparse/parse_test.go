package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/adapters/exporter"
)

func TestOpenOutput(t *testing.T) {
	t.Run("stdout без файла", func(t *testing.T) {
		w, closeOut, err := openOutput("", exporter.FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
		assert.NoError(t, closeOut())
	})

	t.Run("sqlite открывает файл сам", func(t *testing.T) {
		w, closeOut, err := openOutput(filepath.Join(t.TempDir(), "chat.db"), exporter.FormatSQLite)
		require.NoError(t, err)
		assert.Nil(t, w)
		assert.NoError(t, closeOut())
	})

	t.Run("ошибка закрытия файла возвращается", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.csv")
		w, closeOut, err := openOutput(path, exporter.FormatCSV)
		require.NoError(t, err)

		_, err = w.Write([]byte("a,b\n"))
		require.NoError(t, err)
		require.NoError(t, closeOut())

		err = closeOut()
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrClosed)
		assert.Contains(t, err.Error(), "failed to close output file")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(data))
	})

	t.Run("каталог вместо файла", func(t *testing.T) {
		_, _, err := openOutput(t.TempDir(), exporter.FormatJSON)
		assert.Error(t, err)
	})
}
