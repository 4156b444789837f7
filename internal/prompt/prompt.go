// Package prompt reads operator answers from a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ErrEndOfInput is returned once the input is exhausted.
var ErrEndOfInput = errors.New("end of input")

type Prompter struct {
	in   *bufio.Reader
	out  io.Writer
	fold cases.Caser
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fold: cases.Fold()}
}

// Say writes a line of operator-facing text.
func (p *Prompter) Say(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Prompter) Writer() io.Writer {
	return p.out
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrEndOfInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Line prints msg and returns the next line, trimmed.
func (p *Prompter) Line(msg string) (string, error) {
	fmt.Fprint(p.out, msg)
	return p.readLine()
}

// Ask prints msg until the answer, case-folded, is one of legal. With no
// legal values any non-empty answer is accepted. The folded answer is
// returned.
func (p *Prompter) Ask(msg string, legal ...string) (string, error) {
	for {
		answer, err := p.Line(msg)
		if err != nil {
			return "", err
		}
		answer = p.fold.String(answer)
		if len(legal) == 0 {
			if answer != "" {
				return answer, nil
			}
			continue
		}
		for _, l := range legal {
			if answer == p.fold.String(l) {
				return answer, nil
			}
		}
		p.Say("%q is not one of %s. Please try again.", answer, strings.Join(legal, ", "))
	}
}

// Confirm asks a y/n question.
func (p *Prompter) Confirm(msg string) (bool, error) {
	answer, err := p.Ask(msg+" (y/n): ", "y", "n")
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

// Choose shows items as a 1-based menu and returns the 0-based index of the
// chosen item.
func (p *Prompter) Choose(msg string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("nothing to choose from")
	}
	for {
		p.Say("%s", msg)
		for i, item := range items {
			p.Say("  %d) %s", i+1, item)
		}
		answer, err := p.Line("Enter a number: ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		p.Say("Enter a number from 1 to %d.", len(items))
	}
}
