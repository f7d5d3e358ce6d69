package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/env"
	"pkt.systems/pinosh/internal/keybind"
	"pkt.systems/pinosh/internal/plugins/assistant"
	"pkt.systems/pinosh/internal/process"
	"pkt.systems/pslog"
)

// check is one doctor finding. Required checks fail the command.
type check struct {
	name     string
	ok       bool
	detail   string
	required bool
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment pinosh depends on",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Info("doctor start", "config_dir", cfg.ConfigDir)
			checks := runChecks(cfg, env.Load())
			if err := writeChecks(cmd.OutOrStdout(), checks); err != nil {
				return err
			}
			for _, c := range checks {
				if c.required && !c.ok {
					return fmt.Errorf("doctor: %s: %s", c.name, c.detail)
				}
			}
			logger.Info("doctor ok")
			return nil
		},
	}
}

func runChecks(cfg appconfig.Config, e *env.Env) []check {
	var checks []check
	pathList, err := e.Path()
	if err != nil {
		checks = append(checks, check{name: "PATH", detail: err.Error(), required: true})
	} else {
		checks = append(checks, check{name: "PATH", ok: true, detail: fmt.Sprintf("%d entries", len(filepath.SplitList(pathList))), required: true})
	}
	checks = append(checks, dirCheck(cfg.ConfigDir))

	tools := map[string]string{
		"clear":    "clear",
		"terminal": cfg.Terminal.Command,
		"finder":   cfg.Fuzzy.Finder,
		"picker":   cfg.Fuzzy.Picker,
		"git":      "git",
	}
	for name, argv := range cfg.Mux.Languages {
		if len(argv) > 0 {
			tools["mux "+name] = argv[0]
		}
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		checks = append(checks, toolCheck(name, tools[name], pathList))
	}

	if raw, ok := e.Get(keybind.FuzzyDirsVar); ok && raw != "" {
		checks = append(checks, check{name: keybind.FuzzyDirsVar, ok: true, detail: raw})
	} else {
		checks = append(checks, check{name: keybind.FuzzyDirsVar, detail: "not set, C-f is disabled"})
	}
	if _, ok := assistant.APIKey(e); ok {
		checks = append(checks, check{name: assistant.KeyVar, ok: true, detail: "set"})
	} else {
		checks = append(checks, check{name: assistant.KeyVar, detail: "not set, ai is disabled"})
	}
	return checks
}

func dirCheck(dir string) check {
	c := check{name: "config dir", detail: dir, required: true}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.ok = true
		c.detail = dir + " (created on first run)"
	case err != nil:
		c.detail = err.Error()
	case !info.IsDir():
		c.detail = dir + " is not a directory"
	default:
		c.ok = true
	}
	return c
}

func toolCheck(name, command, pathList string) check {
	if command == "" {
		return check{name: name, detail: "not configured"}
	}
	path, err := process.LookPath(command, pathList)
	if err != nil {
		return check{name: name, detail: command + " not found"}
	}
	return check{name: name, ok: true, detail: path}
}

func writeChecks(w io.Writer, checks []check) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range checks {
		status := "ok"
		if !c.ok {
			status = "missing"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", status, c.name, c.detail)
	}
	return tw.Flush()
}
