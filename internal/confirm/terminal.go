package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalGate asks for confirmation on an interactive terminal. Reads
// happen on a separate goroutine so a cancelled context unblocks the
// wait even while the scanner sits on a read.
type TerminalGate struct {
	in  io.Reader
	out io.Writer
}

func NewTerminalGate(in io.Reader, out io.Writer) *TerminalGate {
	return &TerminalGate{in: in, out: out}
}

func (g *TerminalGate) Require(ctx context.Context, req Request) (string, error) {
	options := req.Options
	if len(options) == 0 {
		options = defaultOptions
	}

	if desc := strings.TrimSpace(req.Description); desc != "" {
		fmt.Fprintf(g.out, "%s\n", desc)
	}
	fmt.Fprintf(g.out, "[%s]> ", strings.Join(options, "/"))

	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(g.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			done <- err
			return
		}
		done <- io.EOF
	}()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case err := <-done:
			return "", fmt.Errorf("%w: input closed: %v", ErrCancelled, err)
		case line := <-lines:
			answer := strings.TrimSpace(line)
			if answer == "" {
				fmt.Fprintf(g.out, "[%s]> ", strings.Join(options, "/"))
				continue
			}
			for _, opt := range options {
				if strings.EqualFold(opt, answer) {
					if isDecline(opt) {
						return "", ErrCancelled
					}
					return opt, nil
				}
			}
			fmt.Fprintf(g.out, "answer one of: %s\n[%s]> ", strings.Join(options, ", "), strings.Join(options, "/"))
		}
	}
}
