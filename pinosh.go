// Package pinosh assembles the pinosh shell from its configuration.
package pinosh

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/muesli/termenv"

	"pkt.systems/pinosh/internal/alias"
	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/completion"
	"pkt.systems/pinosh/internal/configdir"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/history"
	"pkt.systems/pinosh/internal/keybind"
	"pkt.systems/pinosh/internal/plugins/assistant"
	"pkt.systems/pinosh/internal/plugins/cmdtimer"
	"pkt.systems/pinosh/internal/plugins/dirparse"
	"pkt.systems/pinosh/internal/plugins/filehistory"
	"pkt.systems/pinosh/internal/plugins/mux"
	"pkt.systems/pinosh/internal/prompt"
	"pkt.systems/pinosh/internal/shell"
	"pkt.systems/pinosh/schema"
	"pkt.systems/pslog"
)

// ShellNameVar is exported to children so scripts can detect pinosh.
const ShellNameVar = "SHELL_NAME"

// Options configures Compose. Zero values use the process environment and
// stdio.
type Options struct {
	Config   appconfig.Config
	NoBanner bool

	Env    *env.Env
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Runner starts the processes of key bindings.
	Runner keybind.Runner
	// Output selects the color profile; derived from Stdout when nil.
	Output *termenv.Output
}

// Compose builds a ready to run shell. Failing to create the config
// directory, a missing PATH and an unopenable history file are fatal.
func Compose(ctx context.Context, opts Options) (*shell.Shell, error) {
	log := pslog.Ctx(ctx)
	cfg := opts.Config
	stdin, stdout, stderr := opts.Stdin, opts.Stdout, opts.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	dir, err := configdir.Ensure(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	e := opts.Env
	if e == nil {
		e = env.Load()
	}
	e.Set(ShellNameVar, schema.ShellName)
	pathList, err := e.Path()
	if err != nil {
		return nil, err
	}

	aliases, err := buildAliases(cfg.Aliases)
	if err != nil {
		return nil, err
	}
	runner := opts.Runner
	if runner == nil {
		runner = keybind.ProcessRunner{}
	}
	keys, err := keybind.Defaults(cfg, runner)
	if err != nil {
		return nil, err
	}

	theme := prompt.ThemeFor(schema.ThemeName(cfg.Theme))
	output := opts.Output
	if output == nil {
		output = termenv.NewOutput(stdout)
	}
	profile := output.EnvColorProfile()

	timer := cmdtimer.New()
	dirs := dirparse.New()
	langs, err := mux.New(cfg.Mux)
	if err != nil {
		return nil, err
	}
	home, _ := e.Get("HOME")
	pr := prompt.New(theme, profile, currentUser(e), home, prompt.States{
		Timer: timer.State(),
		Lang:  langs.State(),
		Dir:   dirs.State(),
	})

	historyFile := cfg.History.File
	if historyFile == "" {
		historyFile = configdir.HistoryPath(dir)
	}
	completer := completion.New()
	b := shell.NewBuilder().
		WithEnv(e).
		WithAliases(aliases).
		WithKeybindings(keys).
		WithCompleter(completer).
		WithPrompt(pr).
		WithHistory(history.NewBuffer(cfg.History.Max)).
		WithIO(stdin, stdout, stderr).
		WithDir(opts.Dir)

	completer.Register(completion.Rule{Pred: completion.CmdnamePred, Action: completion.CmdnameAction(pathList)})
	completer.Register(completion.Rule{Pred: completion.CmdnamePred, Action: completion.BuiltinCmdnameAction(b.BuiltinNames)})
	completer.Register(completion.Rule{Pred: completion.CmdnamePred, Action: completion.StaticAction(aliases.Names()...)})
	completer.Register(completion.Rule{Pred: completion.ArgPred, Action: completion.FilenameAction()})

	logMode, _ := e.Get("LOG_MODE")
	if !BannerSuppressed(logMode, opts.NoBanner) {
		b.Hooks().OnStartup(func(_ context.Context, sh *shell.Shell) error {
			return StartupBanner(sh.Stdout(), theme, profile)
		})
	}

	b.WithPlugin(timer).
		WithPlugin(filehistory.New(ctx, historyFile, cfg.History.Max)).
		WithPlugin(dirs).
		WithPlugin(langs)
	if key, ok := assistant.APIKey(e); ok {
		b.WithPlugin(assistant.New(ctx, cfg.Assistant, key))
	} else {
		fmt.Fprintln(stdout, "Missing OPENAI_KEY, skipping open_ai package")
		log.Debug("assistant disabled", "reason", "missing "+assistant.KeyVar)
	}

	sh, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("shell composed",
		"config_dir", dir,
		"history", historyFile,
		"aliases", aliases.Len(),
		"bindings", keys.Len(),
		"plugins", sh.Plugins(),
		"theme", theme.Name,
	)
	return sh, nil
}

func buildAliases(extra []appconfig.AliasEntry) (*alias.Table, error) {
	entries := make([]alias.Entry, 0, len(appconfig.DefaultAliases)+len(extra))
	for _, pair := range appconfig.DefaultAliases {
		entries = append(entries, alias.Entry{Name: pair[0], Expansion: pair[1]})
	}
	for _, entry := range extra {
		entries = append(entries, alias.Entry{Name: entry.Name, Expansion: entry.Command})
	}
	return alias.New(entries...)
}

func currentUser(e *env.Env) string {
	if name, ok := e.Get("USER"); ok && name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
