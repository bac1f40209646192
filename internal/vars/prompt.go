package vars

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const promptMessage = "Please enter the value for the variable"

// Prompter asks the operator for the value of a variable. Secure prompts
// must not echo the answer. A prompt blocked on input returns ctx.Err()
// once ctx is done.
type Prompter interface {
	Prompt(ctx context.Context, name string, secure bool) (string, error)
}

// TerminalPrompter prompts on Out and reads answers from In. Secure answers
// are read without echo when In is a terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader     *bufio.Reader
	isTerminal func(fd int) bool
}

// NewTerminalPrompter returns a prompter bound to the process's stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt implements Prompter. An empty answer is valid.
//
// A cancelled prompt leaves its read running in the background; the caller
// is expected to abort the run rather than prompt again.
func (p *TerminalPrompter) Prompt(ctx context.Context, name string, secure bool) (string, error) {
	if !secure {
		fmt.Fprintf(p.Out, "%s, [%s]: ", promptMessage, name)
		return awaitAnswer(ctx, p.readLine)
	}

	fmt.Fprintf(p.Out, "<Secure> %s [%s]: ", promptMessage, name)
	fd, ok := p.maskedFD()
	if !ok {
		return awaitAnswer(ctx, p.readLine)
	}

	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("reading terminal state: %w", err)
	}
	v, err := awaitAnswer(ctx, func() (string, error) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("reading secure input: %w", err)
		}
		return string(b), nil
	})
	fmt.Fprintln(p.Out)
	if ctx.Err() != nil {
		// ReadPassword only restores echo when it returns.
		_ = term.Restore(fd, state)
	}
	return v, err
}

// maskedFD returns the terminal descriptor to read a secure answer from.
// Input already buffered by an earlier plain prompt is read first, so
// typed-ahead answers stay in order.
func (p *TerminalPrompter) maskedFD() (int, bool) {
	f, ok := p.In.(*os.File)
	if !ok {
		return 0, false
	}
	if p.reader != nil && p.reader.Buffered() > 0 {
		return 0, false
	}
	isTerminal := p.isTerminal
	if isTerminal == nil {
		isTerminal = term.IsTerminal
	}
	fd := int(f.Fd())
	return fd, isTerminal(fd)
}

func (p *TerminalPrompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type answer struct {
	value string
	err   error
}

// awaitAnswer runs read until it returns or ctx is done.
func awaitAnswer(ctx context.Context, read func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ch := make(chan answer, 1)
	go func() {
		v, err := read()
		ch <- answer{value: v, err: err}
	}()
	select {
	case a := <-ch:
		return a.value, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
