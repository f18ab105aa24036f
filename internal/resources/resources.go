// Package resources содержит данные, от которых зависит разбор экспорта:
// таблицу индикаторов по языкам и платформам, словари эмодзи и смайликов.
// Встроенные данные можно заменить файлами из конфигурации.
package resources

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"
)

//go:embed data/indicators.yml
var defaultIndicators []byte

//go:embed data/emoji.csv
var defaultEmoji []byte

//go:embed data/smilies.csv
var defaultSmilies []byte

// Set объединяет все ресурсы разбора. Set неизменяем после загрузки
// и может использоваться несколькими разборами одновременно.
type Set struct {
	Indicators *IndicatorTable
	Emoji      *EmojiDictionary
	Smilies    *SmileyDictionary
}

// Paths задает файлы, заменяющие встроенные ресурсы. Пустой путь — встроенные данные.
type Paths struct {
	IndicatorsFile string
	EmojiFile      string
	SmiliesFile    string
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
	defaultErr  error
)

// Default возвращает набор встроенных ресурсов. Загрузка выполняется один раз.
func Default() (*Set, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Load(Paths{})
	})
	return defaultSet, defaultErr
}

// MustDefault возвращает встроенные ресурсы и паникует при ошибке в них.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded resources are broken: %v", err))
	}
	return s
}

// Load загружает ресурсы, используя файлы из paths вместо встроенных данных там, где они заданы.
func Load(paths Paths) (*Set, error) {
	var set Set

	r, closeFn, err := open(paths.IndicatorsFile, defaultIndicators)
	if err != nil {
		return nil, err
	}
	set.Indicators, err = LoadIndicatorTable(r)
	closeFn()
	if err != nil {
		return nil, err
	}

	r, closeFn, err = open(paths.EmojiFile, defaultEmoji)
	if err != nil {
		return nil, err
	}
	set.Emoji, err = LoadEmojiDictionary(r)
	closeFn()
	if err != nil {
		return nil, err
	}

	r, closeFn, err = open(paths.SmiliesFile, defaultSmilies)
	if err != nil {
		return nil, err
	}
	set.Smilies, err = LoadSmileyDictionary(r)
	closeFn()
	if err != nil {
		return nil, err
	}

	return &set, nil
}

func open(path string, fallback []byte) (io.Reader, func(), error) {
	if path == "" {
		return bytes.NewReader(fallback), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open resource file %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
