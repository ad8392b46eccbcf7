package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// errInputClosed is returned by prompts once input reaches EOF.
var errInputClosed = errors.New("input closed")

// scanLine returns the next line from sc, or ctx.Err() as soon as ctx is
// done. After a cancellation the pending Scan is abandoned, so sc must not
// be read again.
func scanLine(ctx context.Context, sc *bufio.Scanner) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		line string
		ok   bool
	}
	ch := make(chan result, 1)
	go func() {
		ok := sc.Scan()
		ch <- result{line: sc.Text(), ok: ok}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if !r.ok {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errInputClosed
		}
		return r.line, nil
	}
}

// GetSimpleText prints prompt to w and reads one trimmed line from sc.
func GetSimpleText(ctx context.Context, sc *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := scanLine(ctx, sc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a line from the terminal without
// echo. The caller should wipe the result.
func GetPassword(ctx context.Context, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}

	type result struct {
		pw  []byte
		err error
	}
	read := readPassword
	ch := make(chan result, 1)
	go func() {
		pw, err := read(int(os.Stdin.Fd()))
		ch <- result{pw: pw, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(w)
		return nil, ctx.Err()
	case r := <-ch:
		fmt.Fprintln(w)
		if r.err != nil {
			return nil, r.err
		}
		return r.pw, nil
	}
}

// GetMultiline reads lines until an empty one or EOF and joins them with '\n'.
func GetMultiline(ctx context.Context, sc *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := scanLine(ctx, sc)
		if errors.Is(err, errInputClosed) {
			break
		}
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(ctx context.Context, sc *bufio.Scanner, prompt string, w io.Writer) bool {
	answer, err := GetSimpleText(ctx, sc, prompt+" [y/N]", w)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// mask hides protected values in listings.
func mask(v string, protected bool) string {
	if protected && v != "" {
		return "******"
	}
	return v
}
