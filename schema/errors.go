package schema

import "errors"

var (
	// ErrMissingPath indicates PATH is not set in the environment.
	ErrMissingPath = errors.New("PATH is not set")
	// ErrInvalidAlias indicates an alias name is empty or contains whitespace.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrDuplicateAlias indicates an alias name is defined twice.
	ErrDuplicateAlias = errors.New("duplicate alias")
	// ErrInvalidChord indicates a key chord could not be parsed.
	ErrInvalidChord = errors.New("invalid key chord")
	// ErrDuplicateChord indicates a key chord is bound twice.
	ErrDuplicateChord = errors.New("duplicate key chord")
	// ErrUnknownLang indicates the requested mux language is not registered.
	ErrUnknownLang = errors.New("unknown language")
	// ErrDuplicateBuiltin indicates a builtin name is registered twice.
	ErrDuplicateBuiltin = errors.New("duplicate builtin")
	// ErrNotDirectory indicates a path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrExit is returned by the exit builtin to end the session.
	ErrExit = errors.New("exit")
	// ErrEmptyQuestion indicates the assistant was asked nothing.
	ErrEmptyQuestion = errors.New("empty question")
)
