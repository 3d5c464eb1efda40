package scaffold

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

var ErrAborted = errors.New("prompt aborted")

// Prompter asks the user questions on the terminal.
type Prompter interface {
	Confirm(question string) (bool, error)
	Select(question string, options []string) (int, error)
	Close() error
}

// Interactive reports whether stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// LinePrompter is a Prompter with line editing.
type LinePrompter struct {
	line *liner.State
	out  io.Writer
}

func NewLinePrompter(out io.Writer) *LinePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinePrompter{line: line, out: out}
}

func (p *LinePrompter) Confirm(question string) (bool, error) {
	for {
		answer, err := p.prompt(question + " [y/N] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
	}
}

func (p *LinePrompter) Select(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	for {
		answer, err := p.prompt(fmt.Sprintf("Choice [1-%d]: ", len(options)))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
	}
}

func (p *LinePrompter) prompt(text string) (string, error) {
	answer, err := p.line.Prompt(text)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	return answer, err
}

func (p *LinePrompter) Close() error {
	return p.line.Close()
}

// ChooseDirectory offers the existing directories below the emails root.
// The empty string stands for the root itself.
func ChooseDirectory(p Prompter, dirs []string) (string, error) {
	if len(dirs) == 0 {
		return "", nil
	}
	useExisting, err := p.Confirm("Would you like to select an existing directory?")
	if err != nil || !useExisting {
		return "", err
	}
	options := make([]string, 0, len(dirs)+1)
	options = append(options, "emails/ (root)")
	for _, d := range dirs {
		options = append(options, "emails/"+d+"/")
	}
	i, err := p.Select("Select a directory:", options)
	if err != nil {
		return "", err
	}
	if i == 0 {
		return "", nil
	}
	return dirs[i-1], nil
}
