package source

import (
	"fmt"

	"whatsapp-chat-parser/internal/ports"
)

// MemorySource реализует интерфейс DataSource для данных, уже загруженных в память,
// например полученных сервером из multipart-запроса.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает копию данных. Zip-архив распаковывается так же, как в FileSource.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, fmt.Errorf("data not set")
	}

	if isZip(s.data) {
		return readChatFromZip(s.data)
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)
	return dataCopy, nil
}
