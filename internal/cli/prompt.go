package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputCancelled is returned when input is cancelled by context.
var ErrInputCancelled = errors.New("input cancelled")

// Confirm asks a y/N question on out and reads the answer from in.
// Anything but "y", "s", "yes" or "si" is a no, including EOF.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ErrInputCancelled
	case res := <-ch:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return false, res.err
		}
		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "y", "yes", "s", "si", "sì":
			return true, nil
		default:
			return false, nil
		}
	}
}
