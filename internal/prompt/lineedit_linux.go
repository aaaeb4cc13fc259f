//go:build linux

package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// history is shared by every prompt in the process so earlier answers
// (labels, paths) can be recalled with the arrow keys.
var history []string

// editor is the state of one line being edited in raw mode.
type editor struct {
	out    io.Writer
	prompt string
	line   []byte
	cursor int

	histPos  int
	browsing bool
	draft    string
}

// readEditedLine puts the terminal in non-canonical mode and reads one line
// with cursor movement, word motions and history.
func readEditedLine(prompt string, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return "", err
	}
	raw := *saved
	// ISIG off: Ctrl+C arrives as byte 3 and ends the prompt with
	// ErrInterrupted instead of raising SIGINT.
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return "", err
	}
	defer func() { _ = unix.IoctlSetTermios(fd, unix.TCSETS, saved) }()

	e := &editor{out: out, prompt: prompt, line: make([]byte, 0, 128), histPos: len(history)}
	_, _ = fmt.Fprint(out, prompt)

	var (
		buf    [16]byte
		esc    int // 0 none, 1 saw ESC, 2 inside CSI
		escSeq strings.Builder
	)
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			switch esc {
			case 1:
				esc = 0
				switch b {
				case '[':
					esc = 2
					escSeq.Reset()
				case 'b', 'B':
					e.wordLeft()
				case 'f', 'F':
					e.wordRight()
				case 127:
					e.deleteWordBack()
				}
				continue
			case 2:
				escSeq.WriteByte(b)
				if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
					e.csi(escSeq.String())
					esc = 0
				}
				continue
			}

			switch b {
			case 27:
				esc = 1
			case '\r', '\n':
				_, _ = fmt.Fprint(out, "\r\n")
				s := string(e.line)
				if strings.TrimSpace(s) != "" {
					history = append(history, s)
				}
				return s, nil
			case 3: // Ctrl+C
				_, _ = fmt.Fprint(out, "^C\r\n")
				return "", ErrInterrupted
			case 4: // Ctrl+D
				if len(e.line) == 0 {
					_, _ = fmt.Fprint(out, "\r\n")
					return "", io.EOF
				}
			case 127, 8:
				if e.cursor > 0 {
					e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
					e.cursor--
					e.redraw()
				}
			case 1: // Ctrl+A
				e.cursor = 0
				e.redraw()
			case 5: // Ctrl+E
				e.cursor = len(e.line)
				e.redraw()
			case 21: // Ctrl+U
				e.line = append(e.line[:0], e.line[e.cursor:]...)
				e.cursor = 0
				e.redraw()
			case 23: // Ctrl+W
				e.deleteWordBack()
			default:
				if b >= 32 {
					e.insert(b)
				}
			}
		}
	}
}

func (e *editor) redraw() {
	_, _ = fmt.Fprintf(e.out, "\r%s%s\x1b[K", e.prompt, e.line)
	if e.cursor < len(e.line) {
		_, _ = fmt.Fprintf(e.out, "\r%s%s", e.prompt, e.line[:e.cursor])
	}
}

func (e *editor) insert(b byte) {
	e.line = append(e.line, 0)
	copy(e.line[e.cursor+1:], e.line[e.cursor:])
	e.line[e.cursor] = b
	e.cursor++
	e.redraw()
}

func (e *editor) csi(seq string) {
	switch seq {
	case "A":
		e.historyUp()
	case "B":
		e.historyDown()
	case "D":
		if e.cursor > 0 {
			e.cursor--
			e.redraw()
		}
	case "C":
		if e.cursor < len(e.line) {
			e.cursor++
			e.redraw()
		}
	case "H", "1~":
		e.cursor = 0
		e.redraw()
	case "F", "4~":
		e.cursor = len(e.line)
		e.redraw()
	case "3~":
		if e.cursor < len(e.line) {
			e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
			e.redraw()
		}
	case "1;5D", "5D":
		e.wordLeft()
	case "1;5C", "5C":
		e.wordRight()
	}
}

func (e *editor) historyUp() {
	if len(history) == 0 {
		return
	}
	if !e.browsing {
		e.draft = string(e.line)
		e.browsing = true
		e.histPos = len(history)
	}
	if e.histPos == 0 {
		return
	}
	e.histPos--
	e.replace(history[e.histPos])
}

func (e *editor) historyDown() {
	if !e.browsing {
		return
	}
	if e.histPos < len(history)-1 {
		e.histPos++
		e.replace(history[e.histPos])
		return
	}
	e.histPos = len(history)
	e.browsing = false
	e.replace(e.draft)
}

func (e *editor) replace(s string) {
	e.line = append(e.line[:0], s...)
	e.cursor = len(e.line)
	e.redraw()
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func (e *editor) wordStart() int {
	i := e.cursor
	for i > 0 && isBlank(e.line[i-1]) {
		i--
	}
	for i > 0 && !isBlank(e.line[i-1]) {
		i--
	}
	return i
}

func (e *editor) wordLeft() {
	e.cursor = e.wordStart()
	e.redraw()
}

func (e *editor) wordRight() {
	for e.cursor < len(e.line) && isBlank(e.line[e.cursor]) {
		e.cursor++
	}
	for e.cursor < len(e.line) && !isBlank(e.line[e.cursor]) {
		e.cursor++
	}
	e.redraw()
}

func (e *editor) deleteWordBack() {
	start := e.wordStart()
	e.line = append(e.line[:start], e.line[e.cursor:]...)
	e.cursor = start
	e.redraw()
}
