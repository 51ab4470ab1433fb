// Package prompt asks the operator yes/no questions on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer reads y/N answers from a line-oriented input.
type Confirmer struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	assumeYes   bool
}

// Option configures a Confirmer.
type Option func(*Confirmer)

// WithAssumeYes answers every prompt with yes without reading input.
func WithAssumeYes(yes bool) Option {
	return func(c *Confirmer) { c.assumeYes = yes }
}

// New creates a confirmer over in and out. Prompts are declined when
// interactive is false.
func New(in io.Reader, out io.Writer, interactive bool, opts ...Option) *Confirmer {
	c := &Confirmer{in: bufio.NewReader(in), out: out, interactive: interactive}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Terminal returns a confirmer on stdin and stdout.
func Terminal(opts ...Option) *Confirmer {
	return New(os.Stdin, os.Stdout, IsInteractive(), opts...)
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Confirm prints prompt and reads one answer. Only "y" and "yes" confirm.
func (c *Confirmer) Confirm(prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if !c.interactive {
		fmt.Fprintf(c.out, "%s [y/N] n (not a terminal)\n", prompt)
		return false, nil
	}

	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
