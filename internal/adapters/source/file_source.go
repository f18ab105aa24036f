package source

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"whatsapp-chat-parser/internal/ports"
)

// FileSource реализует интерфейс DataSource для чтения экспорта чата из файла.
// Поддерживаются текстовый файл и zip-архив, который мессенджер создает
// при экспорте "с медиафайлами".
type FileSource struct {
	filePath string
}

// NewFileSource создает новый экземпляр FileSource.
func NewFileSource(filePath string) ports.DataSource {
	return &FileSource{filePath: filePath}
}

// Fetch читает файл по указанному пути и возвращает его содержимое.
// Для zip-архива возвращается содержимое текстового файла чата из архива.
func (s *FileSource) Fetch() ([]byte, error) {
	if s.filePath == "" {
		return nil, fmt.Errorf("не указан путь к файлу")
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}

	if isZip(data) {
		chat, err := readChatFromZip(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive %s: %w", s.filePath, err)
		}
		return chat, nil
	}
	return data, nil
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// readChatFromZip выбирает в архиве текстовый файл чата: "_chat.txt" (iOS)
// или первый по имени *.txt (Android).
func readChatFromZip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var candidates []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".txt") {
			continue
		}
		if filepath.Base(f.Name) == "_chat.txt" {
			candidates = []*zip.File{f}
			break
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("в архиве нет текстового файла чата")
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	rc, err := candidates[0].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
