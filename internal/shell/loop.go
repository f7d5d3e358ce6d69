package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"pkt.systems/pinosh/internal/completion"
	"pkt.systems/pinosh/internal/lineedit"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/schema"
)

const maxListedCandidates = 40

// Run runs startup hooks and then reads and executes lines until exit,
// end of input, SIGTERM or SIGHUP. Ctrl-C belongs to the foreground child
// and never ends the session. A terminal on stdin gets the line editor;
// anything else is read line by line.
func (s *Shell) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(context.WithoutCancel(ctx), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	log := logx.Ctx(ctx)
	log.Debug("shell start", "cwd", s.cwd, "plugins", s.plugins)
	s.hooks.runStartup(ctx, s)

	var err error
	if t, ok := openTerminal(s.stdin); ok {
		err = s.interactive(ctx, t)
	} else {
		err = s.script(ctx)
	}
	log.Debug("shell stop", "exit", s.lastStatus, "err", err)
	return err
}

func (s *Shell) script(ctx context.Context) error {
	scanner := bufio.NewScanner(s.stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.Execute(ctx, scanner.Text()); errors.Is(err, schema.ErrExit) {
			return nil
		}
	}
	return scanner.Err()
}

func (s *Shell) interactive(ctx context.Context, t *terminal) error {
	s.term = t
	s.renderer = lineedit.NewRenderer(s.stdout)
	defer func() {
		_ = t.restore()
		s.term = nil
	}()
	keys := newKeyPump(s.stdin)
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)

	for {
		line, err := s.readLine(ctx, keys, winch)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Execute(ctx, line); errors.Is(err, schema.ErrExit) {
			return nil
		}
	}
}

// lineState is the editor state of the line being read.
type lineState struct {
	ed    lineedit.Editor
	below []string
}

func (s *Shell) readLine(ctx context.Context, keys *keyPump, winch <-chan os.Signal) (string, error) {
	if err := s.term.makeRaw(); err != nil {
		return "", fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = s.term.restore() }()

	st := &lineState{}
	s.mode = schema.LineModeInsert
	s.history.Reset()
	s.draw(st)
	for {
		keys.request()
		var res keyResult
		select {
		case <-ctx.Done():
			s.finish()
			return "", ctx.Err()
		case <-winch:
			s.draw(st)
			continue
		case res = <-keys.keys:
			keys.received()
		}
		if res.err != nil {
			s.finish()
			return "", res.err
		}
		line, done, err := s.handleKey(ctx, st, res.key)
		if done || err != nil {
			st.below = nil
			s.draw(st)
			s.finish()
			return line, err
		}
		s.draw(st)
	}
}

// handleKey applies one key. done reports a submitted line.
func (s *Shell) handleKey(ctx context.Context, st *lineState, key lineedit.Key) (string, bool, error) {
	ed := &st.ed
	st.below = nil

	chord := key.Chord()
	if handled, err := s.keys.Dispatch(ctx, chord, s); handled {
		if err != nil {
			_ = s.WithCookedTerminal(func() error {
				s.Errorf("%v", err)
				return nil
			})
		}
		return "", false, nil
	}

	switch key.Kind {
	case lineedit.KeyEnter:
		return ed.String(), true, nil
	case lineedit.KeyEsc:
		if s.mode == schema.LineModeInsert {
			s.mode = schema.LineModeNormal
			ed.EnterNormal()
		}
		return "", false, nil
	case lineedit.KeyRune:
		if s.mode == schema.LineModeNormal {
			s.mode = ed.Normal(key.Rune)
			return "", false, nil
		}
		ed.InsertRune(key.Rune)
	case lineedit.KeyTab:
		if s.mode == schema.LineModeInsert {
			st.below = s.complete(ed)
		}
	case lineedit.KeyBackspace:
		ed.Backspace()
	case lineedit.KeyDelete:
		ed.Delete()
	case lineedit.KeyLeft:
		ed.MoveLeft()
	case lineedit.KeyRight:
		ed.MoveRight()
	case lineedit.KeyHome:
		ed.MoveStart()
	case lineedit.KeyEnd:
		ed.MoveEnd()
	case lineedit.KeyUp:
		s.lineUp(ed)
	case lineedit.KeyDown:
		s.lineDown(ed)
	case lineedit.KeyAlt:
		switch key.Rune {
		case 'b':
			ed.MoveWordLeft()
		case 'f':
			ed.MoveWordRight()
		}
	case lineedit.KeyCtrl:
		return s.handleCtrl(st, key.Rune)
	}
	return "", false, nil
}

func (s *Shell) handleCtrl(st *lineState, r rune) (string, bool, error) {
	ed := &st.ed
	switch r {
	case 'a':
		ed.MoveStart()
	case 'e':
		ed.MoveEnd()
	case 'b':
		ed.MoveLeft()
	case 'f':
		ed.MoveRight()
	case 'k':
		ed.KillLineEnd()
	case 'u':
		ed.KillLineStart()
	case 'w':
		ed.DeleteWordBackward()
	case 'p':
		s.lineUp(ed)
	case 'n':
		s.lineDown(ed)
	case 'j':
		return ed.String(), true, nil
	case 'l':
		fmt.Fprint(s.stdout, "\x1b[H\x1b[2J")
		s.renderer.Reset()
	case 'c':
		ed.MoveEnd()
		s.draw(st)
		fmt.Fprint(s.stdout, "^C")
		ed.Clear()
		s.finish()
		s.lastStatus = 130
		s.mode = schema.LineModeInsert
		s.history.Reset()
	case 'd':
		if ed.Len() == 0 {
			return "", false, io.EOF
		}
		ed.Delete()
	}
	return "", false, nil
}

func (s *Shell) lineUp(ed *lineedit.Editor) {
	if strings.Contains(ed.String(), "\n") && !ed.AtEdge() {
		ed.MoveUp()
		return
	}
	if entry, ok := s.history.Up(ed.String()); ok {
		ed.SetString(entry)
	}
}

func (s *Shell) lineDown(ed *lineedit.Editor) {
	if strings.Contains(ed.String(), "\n") && !ed.AtEdge() {
		ed.MoveDown()
		return
	}
	if entry, ok := s.history.Down(); ok {
		ed.SetString(entry)
	}
}

// complete expands the word under the cursor. A single candidate replaces
// the word; several extend it to their common prefix and are listed below
// the prompt.
func (s *Shell) complete(ed *lineedit.Editor) []string {
	start, word := ed.Word()
	first := ed.FirstWord()
	candidates := s.completer.Complete(completion.Context{
		Line:      ed.String(),
		Cursor:    ed.Cursor(),
		Word:      word,
		WordStart: start,
		FirstWord: first,
		Cwd:       s.cwd,
		Home:      s.Home(),
	})
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		replacement := candidates[0]
		if !strings.HasSuffix(replacement, "/") {
			replacement += " "
		}
		ed.Replace(start, replacement)
		return nil
	}
	if prefix := completion.CommonPrefix(candidates); len(prefix) > len(word) && strings.HasPrefix(prefix, word) {
		ed.Replace(start, prefix)
	}
	return layoutCandidates(candidates, s.width())
}

func layoutCandidates(candidates []string, width int) []string {
	more := 0
	if len(candidates) > maxListedCandidates {
		more = len(candidates) - maxListedCandidates
		candidates = candidates[:maxListedCandidates]
	}
	colWidth := 0
	for _, c := range candidates {
		if w := lineedit.VisibleWidth(c); w > colWidth {
			colWidth = w
		}
	}
	colWidth += 2
	cols := (width - 1) / colWidth
	if cols < 1 {
		cols = 1
	}
	var rows []string
	var row strings.Builder
	for i, c := range candidates {
		row.WriteString(c)
		if (i+1)%cols == 0 || i == len(candidates)-1 {
			rows = append(rows, strings.TrimRight(row.String(), " "))
			row.Reset()
			continue
		}
		row.WriteString(strings.Repeat(" ", colWidth-lineedit.VisibleWidth(c)))
	}
	if more > 0 {
		rows = append(rows, fmt.Sprintf("... %d more", more))
	}
	return rows
}

func (s *Shell) width() int {
	if s.term == nil {
		return defaultWidth
	}
	return s.term.width(s.stdout)
}

func (s *Shell) draw(st *lineState) {
	left, right := fallbackPrompt, ""
	width := s.width()
	if s.prompt != nil {
		left, right = s.prompt.Prompt(PromptInfo{Mode: s.mode, Cwd: s.cwd, LastStatus: s.lastStatus, Width: width})
	}
	_ = s.renderer.Draw(lineedit.Frame{
		Left:   left,
		Right:  right,
		Input:  st.ed.String(),
		Cursor: st.ed.Cursor(),
		Width:  width,
		Below:  st.below,
	})
	s.drawn = true
}

func (s *Shell) finish() {
	if s.drawn {
		_ = s.renderer.Finish()
		s.drawn = false
	}
}
