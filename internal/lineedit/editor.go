package lineedit

import "unicode"

// Editor is a rune buffer with a cursor. Multi-line input is supported;
// lines are separated by '\n'.
type Editor struct {
	buf    []rune
	cursor int
}

func (e *Editor) String() string {
	return string(e.buf)
}

// Len returns the buffer length in runes.
func (e *Editor) Len() int {
	return len(e.buf)
}

// Cursor returns the cursor position in runes.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Clear empties the buffer.
func (e *Editor) Clear() {
	e.buf = nil
	e.cursor = 0
}

// SetString replaces the buffer and moves the cursor to the end.
func (e *Editor) SetString(value string) {
	if value == "" {
		e.Clear()
		return
	}
	e.buf = []rune(value)
	e.cursor = len(e.buf)
}

// InsertRune inserts r at the cursor.
func (e *Editor) InsertRune(r rune) {
	e.clampCursor()
	e.buf = append(e.buf[:e.cursor], append([]rune{r}, e.buf[e.cursor:]...)...)
	e.cursor++
}

// InsertString inserts s at the cursor.
func (e *Editor) InsertString(s string) {
	for _, r := range s {
		e.InsertRune(r)
	}
}

func (e *Editor) clampCursor() {
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.cursor > len(e.buf) {
		e.cursor = len(e.buf)
	}
}

func (e *Editor) Backspace() {
	if e.cursor <= 0 {
		return
	}
	e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
	e.cursor--
}

func (e *Editor) Delete() {
	if e.cursor < 0 || e.cursor >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
}

func (e *Editor) MoveLeft() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) MoveRight() {
	if e.cursor < len(e.buf) {
		e.cursor++
	}
}

func (e *Editor) MoveStart() {
	e.cursor = 0
}

func (e *Editor) MoveEnd() {
	e.cursor = len(e.buf)
}

func (e *Editor) MoveWordLeft() {
	if e.cursor <= 0 {
		return
	}
	i := e.cursor
	for i > 0 && isSpace(e.buf[i-1]) {
		i--
	}
	for i > 0 && !isSpace(e.buf[i-1]) {
		i--
	}
	e.cursor = i
}

func (e *Editor) MoveWordRight() {
	if e.cursor >= len(e.buf) {
		return
	}
	i := e.cursor
	for i < len(e.buf) && !isSpace(e.buf[i]) {
		i++
	}
	for i < len(e.buf) && isSpace(e.buf[i]) {
		i++
	}
	e.cursor = i
}

func (e *Editor) DeleteWordBackward() {
	if e.cursor <= 0 {
		return
	}
	start := e.cursor
	for start > 0 && isSpace(e.buf[start-1]) {
		start--
	}
	for start > 0 && !isSpace(e.buf[start-1]) {
		start--
	}
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
}

func (e *Editor) MoveUp() {
	start := e.lineStart()
	if start == 0 {
		return
	}
	col := e.cursor - start
	prevEnd := start - 1
	prevStart := 0
	for i := prevEnd - 1; i >= 0; i-- {
		if e.buf[i] == '\n' {
			prevStart = i + 1
			break
		}
	}
	prevLen := prevEnd - prevStart
	if col > prevLen {
		col = prevLen
	}
	e.cursor = prevStart + col
}

func (e *Editor) MoveDown() {
	end := e.lineEnd()
	if end >= len(e.buf) {
		return
	}
	start := e.lineStart()
	col := e.cursor - start
	nextStart := end + 1
	nextEnd := len(e.buf)
	for i := nextStart; i < len(e.buf); i++ {
		if e.buf[i] == '\n' {
			nextEnd = i
			break
		}
	}
	nextLen := nextEnd - nextStart
	if col > nextLen {
		col = nextLen
	}
	e.cursor = nextStart + col
}

func (e *Editor) KillLineStart() {
	if e.cursor <= 0 {
		return
	}
	start := e.lineStart()
	if start >= e.cursor {
		return
	}
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
}

func (e *Editor) KillLineEnd() {
	if e.cursor >= len(e.buf) {
		return
	}
	end := e.lineEnd()
	if end <= e.cursor {
		return
	}
	e.buf = append(e.buf[:e.cursor], e.buf[end:]...)
}

// AtEdge reports whether the cursor sits at the start or end of the buffer,
// where Up/Down navigate history instead of lines.
func (e *Editor) AtEdge() bool {
	return e.cursor == 0 || e.cursor == len(e.buf)
}

// Word returns the word ending at the cursor and its start offset.
func (e *Editor) Word() (int, string) {
	e.clampCursor()
	start := e.cursor
	for start > 0 && !unicode.IsSpace(e.buf[start-1]) {
		start--
	}
	return start, string(e.buf[start:e.cursor])
}

// FirstWord reports whether the cursor is inside the first word of the buffer.
func (e *Editor) FirstWord() bool {
	start, _ := e.Word()
	for i := 0; i < start; i++ {
		if !unicode.IsSpace(e.buf[i]) {
			return false
		}
	}
	return true
}

// Replace swaps the runes in [start, cursor) for text.
func (e *Editor) Replace(start int, text string) {
	e.clampCursor()
	if start < 0 {
		start = 0
	}
	if start > e.cursor {
		start = e.cursor
	}
	tail := append([]rune(nil), e.buf[e.cursor:]...)
	e.buf = append(append(e.buf[:start], []rune(text)...), tail...)
	e.cursor = start + len([]rune(text))
}

func (e *Editor) lineStart() int {
	for i := e.cursor - 1; i >= 0; i-- {
		if e.buf[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

func (e *Editor) lineEnd() int {
	for i := e.cursor; i < len(e.buf); i++ {
		if e.buf[i] == '\n' {
			return i
		}
	}
	return len(e.buf)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
