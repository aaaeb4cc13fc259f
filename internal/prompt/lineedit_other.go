//go:build !linux

package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

var stdin = bufio.NewReader(os.Stdin)

// readEditedLine falls back to plain line reads where raw mode is not wired.
func readEditedLine(prompt string, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, prompt)
	s, err := stdin.ReadString('\n')
	return trimTrailingNewline(s), err
}
