package source

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatText = "01.02.21, 14:30 - Alice: Hi\n"

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFileSource(t *testing.T) {
	t.Run("Fetch возвращает ошибку для пустого пути к файлу", func(t *testing.T) {
		data, err := NewFileSource("").Fetch()
		require.Error(t, err)
		assert.Nil(t, data)
		assert.Equal(t, "не указан путь к файлу", err.Error())
	})

	t.Run("Fetch возвращает ошибку для несуществующего файла", func(t *testing.T) {
		data, err := NewFileSource(filepath.Join(t.TempDir(), "missing.txt")).Fetch()
		assert.Error(t, err)
		assert.Nil(t, data)
	})

	t.Run("Fetch возвращает содержимое текстового файла", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.txt")
		require.NoError(t, os.WriteFile(path, []byte(chatText), 0o600))

		data, err := NewFileSource(path).Fetch()
		require.NoError(t, err)
		assert.Equal(t, chatText, string(data))
	})

	t.Run("Fetch распаковывает _chat.txt из архива", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.zip")
		archive := zipWith(t, map[string]string{
			"IMG-0001.jpg": "binary",
			"a_notes.txt":  "not the chat",
			"_chat.txt":    chatText,
		})
		require.NoError(t, os.WriteFile(path, archive, 0o600))

		data, err := NewFileSource(path).Fetch()
		require.NoError(t, err)
		assert.Equal(t, chatText, string(data))
	})

	t.Run("архив без текстового файла", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.zip")
		require.NoError(t, os.WriteFile(path, zipWith(t, map[string]string{"IMG-0001.jpg": "x"}), 0o600))

		_, err := NewFileSource(path).Fetch()
		assert.Error(t, err)
	})
}

func TestMemorySource(t *testing.T) {
	t.Run("Fetch возвращает установленные данные", func(t *testing.T) {
		expected := []byte("test data")
		actual, err := NewMemorySource(expected).Fetch()
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	})

	t.Run("Fetch возвращает ошибку для nil данных", func(t *testing.T) {
		actual, err := NewMemorySource(nil).Fetch()
		assert.Error(t, err)
		assert.Nil(t, actual)
		assert.Contains(t, err.Error(), "data not set")
	})

	t.Run("Fetch возвращает копию данных", func(t *testing.T) {
		original := []byte("test data")
		fetched, err := NewMemorySource(original).Fetch()
		require.NoError(t, err)

		fetched[0] = 'X'
		assert.Equal(t, []byte("test data"), original)
	})

	t.Run("Fetch распаковывает архив из памяти", func(t *testing.T) {
		data, err := NewMemorySource(zipWith(t, map[string]string{"WhatsApp Chat with Bob.txt": chatText})).Fetch()
		require.NoError(t, err)
		assert.Equal(t, chatText, string(data))
	})
}
