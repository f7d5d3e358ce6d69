package shell

import "pkt.systems/pinosh/schema"

// PromptInfo is the shell state a prompt is rendered from.
type PromptInfo struct {
	Mode       schema.LineMode
	Cwd        string
	LastStatus int
	Width      int
}

// Prompter renders the left and right prompt. Both strings may carry ANSI
// styling.
type Prompter interface {
	Prompt(info PromptInfo) (left, right string)
}

const fallbackPrompt = schema.ShellName + "> "
