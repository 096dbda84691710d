package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// lineInput reads stdin on a background goroutine so prompts can be abandoned when the
// interview ends while the candidate is still typing.
type lineInput struct {
	r     io.Reader
	once  sync.Once
	lines chan string
	err   error
	eof   atomic.Bool
}

func newLineInput(r io.Reader) *lineInput {
	return &lineInput{r: r, lines: make(chan string)}
}

func (in *lineInput) start() {
	in.once.Do(func() {
		go func() {
			defer close(in.lines)
			scanner := bufio.NewScanner(in.r)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
			for scanner.Scan() {
				in.lines <- strings.TrimRight(scanner.Text(), "\r")
			}
			in.err = scanner.Err()
		}()
	})
}

// Lines returns the channel of input lines; it is closed at end of input.
func (in *lineInput) Lines() <-chan string {
	in.start()
	return in.lines
}

// ReadLine waits for the next line. It returns io.EOF at end of input.
func (in *lineInput) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-in.Lines():
		if !ok {
			in.eof.Store(true)
			if in.err != nil {
				return "", in.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

// Exhausted reports whether end of input has been reached.
func (in *lineInput) Exhausted() bool {
	return in.eof.Load()
}
