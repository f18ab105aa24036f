// Package term оборачивает работу с терминалом: размер окна и интерактивный выбор.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// Terminal обеспечивает интерактивный диалог с пользователем через терминал.
type Terminal struct {
	in       *bufio.Reader
	out      io.Writer
	stdinfd  int
	stdoutfd int
}

// NewTerminal создает Terminal для стандартных потоков процесса.
func NewTerminal() *Terminal {
	return &Terminal{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		stdinfd:  int(os.Stdin.Fd()),
		stdoutfd: int(os.Stdout.Fd()),
	}
}

// NewTerminalWith создает Terminal поверх произвольных потоков.
// Такой терминал считается интерактивным, а его ширина неизвестна.
func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:       bufio.NewReader(in),
		out:      out,
		stdinfd:  -1,
		stdoutfd: -1,
	}
}

// IsInteractive сообщает, подключены ли ввод и вывод к терминалу.
func (t *Terminal) IsInteractive() bool {
	if t.stdinfd < 0 {
		return true
	}
	return term.IsTerminal(t.stdinfd) && term.IsTerminal(t.stdoutfd)
}

// Width возвращает ширину терминала в символах или fallback,
// если вывод не является терминалом.
func (t *Terminal) Width(fallback int) int {
	if t.stdoutfd < 0 || !term.IsTerminal(t.stdoutfd) {
		return fallback
	}
	width, _, err := term.GetSize(t.stdoutfd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// Choose выводит пронумерованный список вариантов и читает выбор пользователя.
// Допускается ввод номера или самого варианта.
func (t *Terminal) Choose(prompt string, options []string) (string, error) {
	if len(options) == 0 {
		return "", xerrors.New("no options to choose from")
	}

	fmt.Fprintln(t.out, prompt)
	for i, o := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, o)
	}

	for {
		fmt.Fprint(t.out, "> ")
		line, err := t.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" && err != nil {
			return "", xerrors.Errorf("failed to read choice: %w", err)
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(o, answer) {
				return o, nil
			}
		}

		if err != nil {
			return "", xerrors.Errorf("invalid choice %q", answer)
		}
		fmt.Fprintf(t.out, "Unknown choice %q, try again\n", answer)
	}
}
