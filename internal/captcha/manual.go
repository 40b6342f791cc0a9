package captcha

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive means manual captcha entry was required but no terminal
// is attached. Unattended runs must fail loudly here instead of hanging.
var ErrNotInteractive = errors.New("manual captcha entry required but stdin is not a terminal")

// ManualPrompt collects captcha text from a human. The challenge image is
// written to a file the user can open; the prompt offers the solver's best
// guess for blank-to-accept when one exists.
type ManualPrompt struct {
	in          *bufio.Reader
	out         io.Writer
	imageDir    string
	interactive bool
}

// NewManualPrompt wires the prompt to the given streams. imageDir is where
// challenge images are written for the user to view; empty means the OS temp
// directory.
func NewManualPrompt(in io.Reader, out io.Writer, imageDir string) *ManualPrompt {
	interactive := true
	if file, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(file.Fd()))
	}
	if imageDir == "" {
		imageDir = os.TempDir()
	}
	return &ManualPrompt{
		in:          bufio.NewReader(in),
		out:         out,
		imageDir:    imageDir,
		interactive: interactive,
	}
}

// Ask saves the image, shows the guess if any, and returns the text to
// submit: the user's input, or the guess when the user presses Enter.
func (p *ManualPrompt) Ask(image []byte, guess string) (string, error) {
	if !p.interactive {
		return "", ErrNotInteractive
	}

	path := filepath.Join(p.imageDir, "thsr-captcha.jpg")
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return "", fmt.Errorf("write captcha image: %w", err)
	}
	fmt.Fprintf(p.out, "驗證碼圖片已存至 %s\n", path)

	if guess != "" {
		fmt.Fprintf(p.out, "驗證碼識別結果: %s\n", guess)
		fmt.Fprint(p.out, "按 Enter 確認，或輸入正確的驗證碼：")
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return guess, nil
		}
		return line, nil
	}

	fmt.Fprint(p.out, "請輸入驗證碼：")
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", errors.New("empty captcha input")
	}
	return line, nil
}

func (p *ManualPrompt) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read captcha input: %w", err)
	}
	return strings.ToUpper(strings.TrimSpace(line)), nil
}
