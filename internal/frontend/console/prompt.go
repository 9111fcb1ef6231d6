package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// balanceKeyword selects balance testing at the mode prompt.
const balanceKeyword = "test"

// ErrInvalidMode is returned when the mode prompt receives neither a positive
// player count nor the balance keyword.
var ErrInvalidMode = errors.New("invalid input: enter a number of players (1 or more) or 'test'")

// Mode is the user's top-level choice.
type Mode struct {
	// Balance selects balance testing; Players is then zero.
	Balance bool
	Players int
}

// Prompter reads interactive choices from a line-oriented input.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter reading lines from r and writing prompts to w.
//
// Precondition: r and w must be non-nil.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

// ReadMode asks for the number of players or the balance keyword.
//
// Postcondition: Returns a Mode, ErrInvalidMode, or io.ErrUnexpectedEOF.
func (p *Prompter) ReadMode() (Mode, error) {
	line, err := p.ask("Enter number of players or 'test' for balance testing: ")
	if err != nil {
		return Mode{}, err
	}
	return ParseMode(line)
}

// ParseMode interprets a mode answer. The keyword is case-insensitive.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, balanceKeyword) {
		return Mode{Balance: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return Mode{Players: n}, nil
}

// ReadCharacter asks for player n's name and class, re-prompting until the
// class answer is valid. A blank name becomes "Player n".
//
// Postcondition: Returns a non-empty name and a valid class, or io.ErrUnexpectedEOF.
func (p *Prompter) ReadCharacter(n int) (string, ruleset.Class, error) {
	name, err := p.ask(fmt.Sprintf("Enter name for player %d: ", n))
	if err != nil {
		return "", ruleset.ClassUnknown, err
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", n)
	}

	fmt.Fprintln(p.out, "Available classes:")
	for i, c := range ruleset.Classes {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, c)
	}
	for {
		answer, err := p.ask(fmt.Sprintf("Choose class for %s (1-%d): ", name, len(ruleset.Classes)))
		if err != nil {
			return "", ruleset.ClassUnknown, err
		}
		class, err := ruleset.ParseClass(answer)
		if err == nil {
			return name, class, nil
		}
		fmt.Fprintln(p.out, "Invalid choice. Please try again.")
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}
