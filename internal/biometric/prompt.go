// Package biometric asks the user to confirm their identity before a
// guarded action or a credential-less login.
package biometric

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type Options struct {
	PromptMessage string
	FallbackLabel string
	CancelLabel   string
}

type Result struct {
	Success bool
}

type Prompt interface {
	Authenticate(ctx context.Context, opts Options) (Result, error)
}

// TerminalPrompt stands in for a platform biometric sensor: the user
// confirms by answering "y" on the terminal.
type TerminalPrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompt(in io.Reader, out io.Writer) *TerminalPrompt {
	return &TerminalPrompt{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompt) Authenticate(ctx context.Context, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cancel := opts.CancelLabel
	if cancel == "" {
		cancel = "Batal"
	}
	fmt.Fprintf(p.out, "%s [y = konfirmasi, n = %s]: ", opts.PromptMessage, cancel)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return Result{Success: false}, nil
		}
		return Result{}, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya":
		return Result{Success: true}, nil
	default:
		return Result{Success: false}, nil
	}
}
