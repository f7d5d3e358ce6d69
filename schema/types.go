package schema

// ThemeName identifies a prompt theme.
type ThemeName string

// LangName identifies a language registered with the mux plugin.
type LangName string

// LineMode is the editing mode of the line editor.
type LineMode int

const (
	// LineModeInsert inserts typed runes at the cursor.
	LineModeInsert LineMode = iota
	// LineModeNormal interprets typed runes as vi motions.
	LineModeNormal
)

func (m LineMode) String() string {
	switch m {
	case LineModeNormal:
		return "normal"
	default:
		return "insert"
	}
}

// ShellName is exported to children as SHELL_NAME.
const ShellName = "pinosh"

// ExitStatus is the exit code of the last command.
type ExitStatus int

const (
	// StatusOK reports success.
	StatusOK ExitStatus = 0
	// StatusFailure reports a generic failure.
	StatusFailure ExitStatus = 1
	// StatusNotFound reports an unknown command.
	StatusNotFound ExitStatus = 127
)
