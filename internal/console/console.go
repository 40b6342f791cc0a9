// Package console is the thin terminal surface for interactive prompts.
// Everything it does is line-oriented; components depend on the small
// interface they need, not on this type.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console reads prompts from one stream and writes to another.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New wires a console to the given streams.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Printf writes formatted output.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ReadLine shows a prompt and returns one trimmed line.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only an explicit affirmative answer
// returns true; anything else, including a blank line, is a refusal.
func (c *Console) Confirm(prompt string) (bool, error) {
	line, err := c.ReadLine(prompt + " (y/N)：")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// SelectIndex reads a one-based selection, returning def on a blank line.
func (c *Console) SelectIndex(prompt string, def int) (int, error) {
	line, err := c.ReadLine(fmt.Sprintf("%s（預設：%d）：", prompt, def))
	if err != nil {
		return 0, err
	}
	if line == "" {
		return def, nil
	}
	index, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q", line)
	}
	return index, nil
}
