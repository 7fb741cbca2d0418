// Package prompt abstracts interactive yes/no confirmation so decision
// logic can be exercised in tests without a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInterrupted reports that the user aborted input (Ctrl-C / Ctrl-D)
// mid-prompt. Callers treat this as a soft abort of the current loop.
var ErrInterrupted = errors.New("prompt interrupted")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	// Confirm returns the user's answer. It returns ErrInterrupted when
	// input is aborted before an answer is given.
	Confirm(message string) (bool, error)
}

// Terminal prompts on Out and reads answers from In.
// When AssumeYes is set, every prompt is answered yes without output.
type Terminal struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool

	scanner *bufio.Scanner
}

// Confirm prints "message (y/N)" and reads one line. Empty or unrecognized
// answers count as no. End of input is reported as ErrInterrupted.
func (t *Terminal) Confirm(message string) (bool, error) {
	if t.AssumeYes {
		return true, nil
	}

	if t.scanner == nil {
		t.scanner = bufio.NewScanner(t.In)
	}

	fmt.Fprintf(t.Out, "%s (y/N) ", message)

	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		fmt.Fprintln(t.Out)
		return false, ErrInterrupted
	}

	answer := strings.TrimSpace(strings.ToLower(t.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
