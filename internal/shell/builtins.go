package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"pkt.systems/pinosh/internal/keybind"
)

func coreBuiltins() []Builtin {
	return []Builtin{
		{Name: "cd", Usage: "cd [dir|-]  change the working directory", Run: builtinCd},
		{Name: "exit", Usage: "exit [code]  leave the shell", Run: builtinExit},
		{Name: "alias", Usage: "alias [name...]  show aliases", Run: builtinAlias},
		{Name: "history", Usage: "history [n]  show the last n history entries", Run: builtinHistory},
		{Name: "export", Usage: "export [KEY=VALUE...]  set environment variables", Run: builtinExport},
		{Name: "unset", Usage: "unset KEY...  remove environment variables", Run: builtinUnset},
		{Name: "bindings", Usage: "bindings  list key bindings", Run: builtinBindings},
		{Name: "help", Usage: "help  list builtins", Run: builtinHelp},
	}
}

func builtinCd(ctx context.Context, sh *Shell, args []string) int {
	if len(args) > 1 {
		sh.Errorf("cd: too many arguments")
		return 1
	}
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	if err := sh.ChangeDir(ctx, dir); err != nil {
		sh.Errorf("%v", err)
		return 1
	}
	if dir == "-" {
		fmt.Fprintln(sh.Stdout(), sh.Cwd())
	}
	return 0
}

func builtinExit(_ context.Context, sh *Shell, args []string) int {
	if len(args) == 0 {
		return sh.LastStatus()
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		sh.Errorf("exit: %s: numeric argument required", args[0])
		return 2
	}
	return code & 0xff
}

func builtinAlias(_ context.Context, sh *Shell, args []string) int {
	if len(args) == 0 {
		for _, entry := range sh.Aliases().Entries() {
			fmt.Fprintf(sh.Stdout(), "alias %s=%s\n", entry.Name, shellQuote(entry.Expansion))
		}
		return 0
	}
	status := 0
	for _, name := range args {
		if strings.Contains(name, "=") {
			sh.Errorf("alias: aliases are read from config.yaml")
			status = 1
			continue
		}
		expansion, ok := sh.Aliases().Get(name)
		if !ok {
			sh.Errorf("alias: %s: not found", name)
			status = 1
			continue
		}
		fmt.Fprintf(sh.Stdout(), "alias %s=%s\n", name, shellQuote(expansion))
	}
	return status
}

func builtinHistory(_ context.Context, sh *Shell, args []string) int {
	entries := sh.History().Entries()
	offset := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			sh.Errorf("history: %s: numeric argument required", args[0])
			return 1
		}
		if n < len(entries) {
			offset = len(entries) - n
		}
	}
	for i := offset; i < len(entries); i++ {
		fmt.Fprintf(sh.Stdout(), "%5d  %s\n", i+1, entries[i])
	}
	return 0
}

func builtinExport(_ context.Context, sh *Shell, args []string) int {
	if len(args) == 0 {
		for _, pair := range sh.Env().Environ() {
			fmt.Fprintf(sh.Stdout(), "export %s\n", pair)
		}
		return 0
	}
	status := 0
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !validName(key) {
			sh.Errorf("export: %s: not a valid identifier", arg)
			status = 1
			continue
		}
		if !ok {
			// Everything in Env is exported already.
			continue
		}
		sh.Env().Set(key, value)
	}
	return status
}

func builtinUnset(_ context.Context, sh *Shell, args []string) int {
	for _, key := range args {
		sh.Env().Unset(key)
	}
	return 0
}

func builtinBindings(_ context.Context, sh *Shell, _ []string) int {
	WriteBindings(sh.Stdout(), sh.Bindings().Entries())
	return 0
}

// WriteBindings prints one chord and description per line.
func WriteBindings(w io.Writer, bindings []keybind.Binding) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bindings {
		fmt.Fprintf(tw, "%s\t%s\n", b.Chord, b.Description)
	}
	_ = tw.Flush()
}

func builtinHelp(_ context.Context, sh *Shell, _ []string) int {
	for _, b := range sh.Builtins() {
		fmt.Fprintln(sh.Stdout(), b.Usage)
	}
	return 0
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
