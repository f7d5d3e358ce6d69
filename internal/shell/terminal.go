package shell

import (
	"io"
	"os"

	"golang.org/x/term"

	"pkt.systems/pinosh/internal/lineedit"
)

const defaultWidth = 80

type terminal struct {
	fd    int
	state *term.State
	raw   bool
}

func openTerminal(in io.Reader) (*terminal, bool) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return &terminal{fd: int(f.Fd())}, true
}

func (t *terminal) makeRaw() error {
	if t.raw {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.state = state
	t.raw = true
	return nil
}

func (t *terminal) restore() error {
	if !t.raw {
		return nil
	}
	t.raw = false
	return term.Restore(t.fd, t.state)
}

func (t *terminal) width(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if w, _, err := term.GetSize(t.fd); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

type keyResult struct {
	key lineedit.Key
	err error
}

// keyPump reads keys on a goroutine, one per request, so the shell can wait
// for a key and for signals at once without reading ahead of a child
// process that shares the terminal.
type keyPump struct {
	reader  *lineedit.KeyReader
	want    chan struct{}
	keys    chan keyResult
	pending bool
}

func newKeyPump(in io.Reader) *keyPump {
	p := &keyPump{
		reader: lineedit.NewKeyReader(in),
		want:   make(chan struct{}, 1),
		keys:   make(chan keyResult, 1),
	}
	go p.loop()
	return p
}

func (p *keyPump) loop() {
	for range p.want {
		key, err := p.reader.ReadKey()
		p.keys <- keyResult{key: key, err: err}
		if err != nil {
			return
		}
	}
}

func (p *keyPump) request() {
	if p.pending {
		return
	}
	p.pending = true
	p.want <- struct{}{}
}

func (p *keyPump) received() {
	p.pending = false
}
