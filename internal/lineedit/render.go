package lineedit

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Frame is one redraw of the prompt line.
type Frame struct {
	Left   string
	Right  string
	Input  string
	Cursor int
	Width  int
	// Below holds extra rows drawn under the input, such as completion
	// candidates.
	Below []string
}

// Renderer draws frames inline at the current cursor position. Each draw
// replaces the rows written by the previous one.
type Renderer struct {
	out       io.Writer
	rows      int
	cursorRow int
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Draw erases the previous frame and writes f.
func (r *Renderer) Draw(f Frame) error {
	var b strings.Builder
	b.WriteString("\r")
	if r.cursorRow > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", r.cursorRow)
	}
	b.WriteString("\x1b[J")

	lines, cursorRow, cursorCol := renderInputLines(f.Left, f.Input, f.Cursor, f.Width)
	if f.Right != "" && f.Width > 0 {
		used := visibleWidth(lines[0])
		rightWidth := visibleWidth(f.Right)
		if pad := f.Width - 1 - used - rightWidth; pad >= 1 {
			lines[0] += strings.Repeat(" ", pad) + f.Right
		}
	}
	for _, line := range f.Below {
		if f.Width > 0 {
			line = trimANSIToWidth(line, f.Width-1)
		}
		lines = append(lines, line+"\x1b[0m")
	}
	b.WriteString(strings.Join(lines, "\r\n"))

	last := len(lines) - 1
	if up := last - (cursorRow - 1); up > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", up)
	}
	b.WriteString("\r")
	if cursorCol > 1 {
		fmt.Fprintf(&b, "\x1b[%dC", cursorCol-1)
	}
	r.rows = len(lines)
	r.cursorRow = cursorRow - 1
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Finish moves below the last drawn row so output can follow the frame.
func (r *Renderer) Finish() error {
	var b strings.Builder
	if down := r.rows - 1 - r.cursorRow; down > 0 {
		fmt.Fprintf(&b, "\x1b[%dB", down)
	}
	b.WriteString("\r\n")
	r.Reset()
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Reset forgets the previous frame, for when something else has written
// to the terminal.
func (r *Renderer) Reset() {
	r.rows = 0
	r.cursorRow = 0
}

func renderInputLines(prefix, input string, cursor, width int) ([]string, int, int) {
	inputRunes := []rune(input)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(inputRunes) {
		cursor = len(inputRunes)
	}
	prefixWidth := visibleWidth(prefix)
	if width <= 0 {
		width = prefixWidth + len(inputRunes) + 1
	}
	prefixVisible := prefix
	if prefixWidth > width {
		prefixVisible = trimANSIToWidth(prefix, width)
		prefixWidth = visibleWidth(prefixVisible)
	}
	availableFirst := width - prefixWidth
	if availableFirst < 1 {
		availableFirst = 1
	}
	// Continuation rows start at column one, the way a plain shell wraps.
	availableOther := width

	lines := []string{}
	lineRunes := make([]rune, 0, availableFirst)
	row := 0
	col := 0
	cursorRow := 1
	cursorCol := prefixWidth + 1
	cursorSet := false
	currentAvailable := availableFirst

	flushLine := func() {
		prefixStr := prefixVisible
		if row > 0 {
			prefixStr = ""
		}
		lines = append(lines, prefixStr+string(lineRunes))
		row++
		lineRunes = lineRunes[:0]
		col = 0
		currentAvailable = availableOther
	}
	offset := func() int {
		if row > 0 {
			return 0
		}
		return prefixWidth
	}

	for i, ch := range inputRunes {
		if !cursorSet && i == cursor {
			if col >= currentAvailable && ch != '\n' {
				flushLine()
			}
			cursorRow = row + 1
			cursorCol = offset() + col + 1
			cursorSet = true
		}
		if ch == '\n' {
			flushLine()
			continue
		}
		if col >= currentAvailable {
			flushLine()
		}
		lineRunes = append(lineRunes, ch)
		col++
	}
	if !cursorSet {
		if col >= currentAvailable {
			flushLine()
		}
		cursorRow = row + 1
		cursorCol = offset() + col + 1
	}
	flushLine()
	if cursorCol < 1 {
		cursorCol = 1
	}
	if cursorCol > width {
		cursorCol = width
	}
	return lines, cursorRow, cursorCol
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}

// VisibleWidth returns the printed width of text, ignoring ANSI escapes.
func VisibleWidth(text string) int {
	return visibleWidth(text)
}

func visibleWidth(text string) int {
	width := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		width++
	}
	return width
}

func trimANSIToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	visible := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			start := i
			i = skipEscape(text, i+1)
			b.WriteString(text[start:i])
			continue
		}
		if visible >= width {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		b.WriteRune(r)
		i += size
		visible++
	}
	return b.String()
}
