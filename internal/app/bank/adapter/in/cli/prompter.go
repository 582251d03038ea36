package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Choice 選單上的一個選項
type Choice struct {
	Key   string
	Label string
}

// Prompter 取得使用者輸入，輸入結束時回傳 io.EOF
type Prompter interface {
	Choose(title string, choices []Choice) (string, error)
	Input(title string) (string, error)
}

// NewPrompter stdin 是終端機時使用 huh 表單，否則逐行讀取
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return &FormPrompter{}
	}
	return NewLinePrompter(in, out)
}

// LinePrompter 從 io.Reader 逐行讀取輸入
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (p *LinePrompter) Choose(title string, choices []Choice) (string, error) {
	for _, c := range choices {
		_, _ = fmt.Fprintf(p.out, "%s. %s\n", c.Key, c.Label)
	}
	return p.Input(title)
}

func (p *LinePrompter) Input(title string) (string, error) {
	_, _ = fmt.Fprint(p.out, title)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// FormPrompter 以 huh 表單在終端機上互動
type FormPrompter struct{}

func (p *FormPrompter) Choose(title string, choices []Choice) (string, error) {
	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(fmt.Sprintf("%s. %s", c.Key, c.Label), c.Key))
	}
	var choice string
	err := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&choice).
		Run()
	return choice, formError(err)
}

func (p *FormPrompter) Input(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Value(&value).
		Run()
	return strings.TrimSpace(value), formError(err)
}

// formError 使用者中斷表單視同輸入結束
func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return nil
}
