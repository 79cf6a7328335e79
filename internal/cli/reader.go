package cli

import (
	"bufio"
	"context"
	"io"
)

type lineReader interface {
	ReadString(delim byte) (string, error)
}

type readResult struct {
	line string
	err  error
}

// contextReader reads lines on a separate goroutine so a blocked read on
// the terminal gives way to ctx cancellation.
type contextReader struct {
	ctx   context.Context
	lines <-chan readResult
}

func newContextReader(ctx context.Context, in io.Reader) *contextReader {
	lines := make(chan readResult)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return &contextReader{ctx: ctx, lines: lines}
}

// ReadString only supports '\n' as delim, which is all the REPL uses.
func (r *contextReader) ReadString(_ byte) (string, error) {
	select {
	case <-r.ctx.Done():
		return "", r.ctx.Err()
	case result, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return result.line, result.err
	}
}
