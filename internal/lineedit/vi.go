package lineedit

import "pkt.systems/pinosh/schema"

// Normal applies a vi normal-mode command to the editor and returns the
// mode the editor is in afterwards. Unknown runes are ignored.
func (e *Editor) Normal(r rune) schema.LineMode {
	switch r {
	case 'h':
		e.MoveLeft()
	case 'l':
		if e.cursor < len(e.buf)-1 {
			e.cursor++
		}
	case '0':
		e.cursor = e.lineStart()
	case '$':
		end := e.lineEnd()
		if end > e.lineStart() {
			end--
		}
		e.cursor = end
	case 'w':
		e.MoveWordRight()
		e.clampNormal()
	case 'b':
		e.MoveWordLeft()
	case 'x':
		e.Delete()
		e.clampNormal()
	case 'i':
		return schema.LineModeInsert
	case 'a':
		e.MoveRight()
		return schema.LineModeInsert
	case 'A':
		e.cursor = e.lineEnd()
		return schema.LineModeInsert
	case 'I':
		e.cursor = e.lineStart()
		return schema.LineModeInsert
	}
	return schema.LineModeNormal
}

// EnterNormal moves the cursor onto the last character, like vi does when
// leaving insert mode.
func (e *Editor) EnterNormal() {
	if e.cursor > e.lineStart() {
		e.cursor--
	}
}

func (e *Editor) clampNormal() {
	if e.cursor >= len(e.buf) && len(e.buf) > 0 {
		e.cursor = len(e.buf) - 1
	}
}
