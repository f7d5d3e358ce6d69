// Package assistant answers questions from the shell through an
// OpenAI-compatible API.
package assistant

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/shell"
)

const (
	Name = "assistant"
	// KeyVar holds the API key. The plugin is only attached when it is set.
	KeyVar = "OPENAI_KEY"
)

// APIKey returns the key from e, if set.
func APIKey(e *env.Env) (string, bool) {
	key, ok := e.Get(KeyVar)
	key = strings.TrimSpace(key)
	return key, ok && key != ""
}

// Plugin registers the ai builtin.
type Plugin struct {
	client         *Client
	historyContext int
}

// New builds the plugin from cfg with apiKey.
func New(ctx context.Context, cfg appconfig.AssistantConfig, apiKey string) *Plugin {
	failures := cfg.MaxFailures
	if failures < 0 {
		failures = 0
	}
	client := NewClient(Options{
		APIKey:            apiKey,
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxFailures:       uint32(failures),
	}, logx.WithPlugin(ctx, Name))
	return &Plugin{client: client, historyContext: cfg.HistoryContext}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *Client, historyContext int) *Plugin {
	return &Plugin{client: client, historyContext: historyContext}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Init(b *shell.Builder) error {
	return b.RegisterBuiltin(shell.Builtin{
		Name:  "ai",
		Usage: "ai <question>  ask the assistant",
		Run:   p.builtin,
	})
}

func (p *Plugin) builtin(ctx context.Context, sh *shell.Shell, args []string) int {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		sh.Errorf("ai: usage: ai <question>")
		return 2
	}
	// The shell ignores SIGINT; here Ctrl-C abandons the request.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	answer, err := p.client.Ask(ctx, Question{
		Text:    question,
		Cwd:     sh.Cwd(),
		History: p.recent(sh),
	})
	if err != nil {
		if ctx.Err() != nil {
			sh.Errorf("ai: interrupted")
			return 130
		}
		sh.Errorf("ai: %v", err)
		return 1
	}
	fmt.Fprintln(sh.Stdout(), answer)
	return 0
}

// recent returns the history before the current ai line.
func (p *Plugin) recent(sh *shell.Shell) []string {
	if p.historyContext <= 0 {
		return nil
	}
	entries := sh.History().Last(p.historyContext + 1)
	if n := len(entries); n > 0 && strings.HasPrefix(entries[n-1], "ai ") {
		entries = entries[:n-1]
	}
	if len(entries) > p.historyContext {
		entries = entries[len(entries)-p.historyContext:]
	}
	return entries
}
