// Package prompt renders the left and right prompt from shell and plugin
// state.
package prompt

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"pkt.systems/pinosh/internal/plugins/cmdtimer"
	"pkt.systems/pinosh/internal/plugins/dirparse"
	"pkt.systems/pinosh/internal/plugins/mux"
	"pkt.systems/pinosh/internal/shell"
	"pkt.systems/pinosh/schema"
)

// States are the plugin states the renderers read. Any may be nil.
type States struct {
	Timer *cmdtimer.State
	Lang  *mux.State
	Dir   *dirparse.State
}

// Context is what a renderer is called with on each redraw.
type Context struct {
	Mode       schema.LineMode
	User       string
	Cwd        string
	Home       string
	LastStatus int
	Theme      Theme
	States
}

// RenderFunc builds one prompt segment.
type RenderFunc func(Context) StyledBuf

// Prompt implements shell.Prompter with a pair of render functions.
type Prompt struct {
	Left    RenderFunc
	Right   RenderFunc
	Theme   Theme
	Profile termenv.Profile
	User    string
	Home    string
	States  States
}

// New returns a prompt using DefaultLeft and DefaultRight.
func New(theme Theme, profile termenv.Profile, user, home string, states States) *Prompt {
	return &Prompt{
		Left:    DefaultLeft,
		Right:   DefaultRight,
		Theme:   theme,
		Profile: profile,
		User:    user,
		Home:    home,
		States:  states,
	}
}

func (p *Prompt) Prompt(info shell.PromptInfo) (string, string) {
	ctx := Context{
		Mode:       info.Mode,
		User:       p.User,
		Cwd:        info.Cwd,
		Home:       p.Home,
		LastStatus: info.LastStatus,
		Theme:      p.Theme,
		States:     p.States,
	}
	var left, right StyledBuf
	if p.Left != nil {
		left = p.Left(ctx)
	}
	if p.Right != nil {
		right = p.Right(ctx)
	}
	return left.String(p.Profile), right.String(p.Profile)
}

// DefaultLeft renders " user dir > ". The indicator is ":" in normal mode
// and takes the error color after a failed command.
func DefaultLeft(c Context) StyledBuf {
	var buf StyledBuf
	buf.Push(" ", Style{})
	if c.User != "" {
		buf.Push(c.User, fg(c.Theme.User))
		buf.Push(" ", Style{})
	}
	if dir := topDir(c.Cwd, c.Home); dir != "" {
		buf.Push(dir, bold(c.Theme.Dir))
		buf.Push(" ", Style{})
	}
	indicator, color := ">", c.Theme.Insert
	if c.Mode == schema.LineModeNormal {
		indicator, color = ":", c.Theme.Normal
	}
	if c.LastStatus != 0 {
		color = c.Theme.Error
	}
	buf.Push(indicator, bold(color))
	buf.Push(" ", Style{})
	return buf
}

// DefaultRight renders the git branch, last command time, active language
// and project tags. Missing state renders nothing.
func DefaultRight(c Context) StyledBuf {
	var parts []StyledBuf
	if info, ok := c.Dir.Git(); ok && info.Branch != "" {
		var part StyledBuf
		part.Push("git:"+info.Branch, fg(c.Theme.Git))
		parts = append(parts, part)
	}
	if elapsed, ok := c.Timer.CommandTime(); ok {
		var part StyledBuf
		part.Push(FormatDuration(elapsed), fg(c.Theme.Timer))
		parts = append(parts, part)
	}
	if lang := c.Lang.CurrentLang(); lang != "" {
		var part StyledBuf
		part.Push(string(lang), fg(c.Theme.Lang))
		parts = append(parts, part)
	}
	if project, ok := c.Dir.Node(); ok {
		var part StyledBuf
		part.Push(projectTag("node", project), fg(c.Theme.Node))
		parts = append(parts, part)
	}
	if project, ok := c.Dir.Rust(); ok {
		var part StyledBuf
		part.Push(projectTag("rust", project), fg(c.Theme.Rust))
		parts = append(parts, part)
	}
	var buf StyledBuf
	for i, part := range parts {
		if i > 0 {
			buf.Push(" ", Style{})
		}
		buf.Append(part)
	}
	return buf
}

// FormatDuration renders d as "850ms", "1.5s" or "2m3s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	if d < time.Minute {
		return d.Round(100 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func projectTag(kind string, p dirparse.Project) string {
	tag := kind
	if p.Name != "" {
		tag += ":" + p.Name
	}
	if p.Version != "" {
		tag += "@" + p.Version
	}
	return tag
}

func topDir(cwd, home string) string {
	if cwd == "" {
		return ""
	}
	cwd = filepath.Clean(cwd)
	if home != "" && cwd == filepath.Clean(home) {
		return "~"
	}
	if cwd == string(filepath.Separator) {
		return cwd
	}
	return strings.TrimSuffix(filepath.Base(cwd), string(filepath.Separator))
}
