package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

func applyArgs(t *testing.T, args ...string) (domain.Options, error) {
	t.Helper()
	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return flags.apply(cmd, domain.DefaultOptions())
}

func TestOptionFlags_Apply(t *testing.T) {
	t.Run("без флагов значения из конфигурации", func(t *testing.T) {
		opts, err := applyArgs(t)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultOptions().URLMode, opts.URLMode)
		assert.Nil(t, opts.ConsentText)
		assert.True(t, opts.AnonymizeMentions)
	})

	t.Run("все флаги", func(t *testing.T) {
		opts, err := applyArgs(t,
			"--platform=ios", "--language=german", "--smilies=dictionary", "--urls=domain",
			"--anon=add", "--order=time", "--consent=Ich stimme zu", "--anonymize-mentions=false",
			"--timezone=Europe/Berlin")
		require.NoError(t, err)
		assert.Equal(t, domain.PlatformIOS, opts.Platform)
		assert.Equal(t, domain.LanguageGerman, opts.Language)
		assert.Equal(t, domain.SmileyDictionary, opts.SmileyStrategy)
		assert.Equal(t, domain.URLDomain, opts.URLMode)
		assert.Equal(t, domain.AnonAdd, opts.AnonMode)
		assert.Equal(t, domain.OrderTime, opts.Order)
		require.NotNil(t, opts.ConsentText)
		assert.Equal(t, "Ich stimme zu", *opts.ConsentText)
		assert.False(t, opts.AnonymizeMentions)
		assert.Equal(t, "Europe/Berlin", opts.Location.String())
	})

	t.Run("пустой текст согласия включает фильтр", func(t *testing.T) {
		opts, err := applyArgs(t, "--consent=")
		require.NoError(t, err)
		require.NotNil(t, opts.ConsentText)
	})

	t.Run("некорректные значения", func(t *testing.T) {
		for _, arg := range []string{"--platform=symbian", "--urls=path", "--order=random", "--timezone=Mars/Olympus"} {
			_, err := applyArgs(t, arg)
			assert.Error(t, err, arg)
		}
	})
}

type scriptedChooser struct {
	answers []string
	prompts []string
	options [][]string
}

func (c *scriptedChooser) Choose(prompt string, options []string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	c.options = append(c.options, options)
	if len(c.answers) == 0 {
		return "", errors.New("no answer")
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

func TestResolveAmbiguity(t *testing.T) {
	table := resources.MustDefault().Indicators

	t.Run("платформа", func(t *testing.T) {
		c := &scriptedChooser{answers: []string{"ios"}}
		err := fmt.Errorf("detect-platform: %w", &domain.AmbiguousFormatError{AndroidCount: 2, IOSCount: 2})

		opts, handled, promptErr := resolveAmbiguity(err, domain.DefaultOptions(), table, c)
		require.NoError(t, promptErr)
		assert.True(t, handled)
		assert.Equal(t, domain.PlatformIOS, opts.Platform)
		assert.Contains(t, c.prompts[0], "android=2, ios=2")
	})

	t.Run("язык", func(t *testing.T) {
		c := &scriptedChooser{answers: []string{"german"}}
		err := &domain.StageError{Stage: domain.StageDetectLanguage, Err: &domain.AmbiguousLanguageError{Platform: domain.PlatformAndroid}}

		opts, handled, promptErr := resolveAmbiguity(err, domain.DefaultOptions(), table, c)
		require.NoError(t, promptErr)
		assert.True(t, handled)
		assert.Equal(t, domain.PlatformAndroid, opts.Platform)
		assert.Equal(t, domain.LanguageGerman, opts.Language)
		assert.Contains(t, c.options[0], "english")
	})

	t.Run("другие ошибки не обрабатываются", func(t *testing.T) {
		c := &scriptedChooser{}
		_, handled, promptErr := resolveAmbiguity(errors.New("boom"), domain.DefaultOptions(), table, c)
		assert.False(t, handled)
		assert.NoError(t, promptErr)
		assert.Empty(t, c.prompts)
	})

	t.Run("ошибка ввода", func(t *testing.T) {
		_, handled, promptErr := resolveAmbiguity(&domain.AmbiguousFormatError{}, domain.DefaultOptions(), table, &scriptedChooser{})
		assert.True(t, handled)
		assert.Error(t, promptErr)
	})
}
