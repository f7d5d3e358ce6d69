// Package dirparse detects the project context of the working directory:
// the git branch and node or rust package metadata.
package dirparse

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pkt.systems/pinosh/internal/git"
	"pkt.systems/pinosh/internal/logx"
	"pkt.systems/pinosh/internal/shell"
)

const Name = "dirparse"

// Module names accepted by State.ModuleMetadata.
const (
	ModuleGit  = "git"
	ModuleNode = "node"
	ModuleRust = "rust"
)

const gitTimeout = 2 * time.Second

// GitInfo describes the enclosing git work tree.
type GitInfo struct {
	Root   string
	Branch string
}

// Project is a package manifest found above the working directory.
type Project struct {
	Root    string
	Name    string
	Version string
}

// State holds the last detection result.
type State struct {
	mu   sync.RWMutex
	dir  string
	git  *GitInfo
	node *Project
	rust *Project
}

// Dir returns the directory the state was detected for.
func (s *State) Dir() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

func (s *State) Git() (GitInfo, bool) {
	if s == nil {
		return GitInfo{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.git == nil {
		return GitInfo{}, false
	}
	return *s.git, true
}

func (s *State) Node() (Project, bool) {
	if s == nil {
		return Project{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.node == nil {
		return Project{}, false
	}
	return *s.node, true
}

func (s *State) Rust() (Project, bool) {
	if s == nil {
		return Project{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rust == nil {
		return Project{}, false
	}
	return *s.rust, true
}

// ModuleMetadata returns the metadata detected for the named module: a
// GitInfo for "git" and a Project for "node" and "rust".
func (s *State) ModuleMetadata(name string) (any, bool) {
	switch name {
	case ModuleGit:
		return s.Git()
	case ModuleNode:
		return s.Node()
	case ModuleRust:
		return s.Rust()
	}
	return nil, false
}

func (s *State) store(dir string, gitInfo *GitInfo, node, rust *Project) {
	s.mu.Lock()
	s.dir = dir
	s.git = gitInfo
	s.node = node
	s.rust = rust
	s.mu.Unlock()
}

// Plugin refreshes State at startup and on every directory change.
type Plugin struct {
	state *State
}

func New() *Plugin {
	return &Plugin{state: &State{}}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) State() *State { return p.state }

func (p *Plugin) Init(b *shell.Builder) error {
	hooks := b.Hooks()
	hooks.OnStartup(func(ctx context.Context, sh *shell.Shell) error {
		return p.Detect(ctx, sh.Cwd())
	})
	hooks.OnChangeDir(func(ctx context.Context, _ *shell.Shell, _, newDir string) error {
		return p.Detect(ctx, newDir)
	})
	return nil
}

// Detect walks from dir up to the filesystem root. The nearest marker of
// each kind wins.
func (p *Plugin) Detect(ctx context.Context, dir string) error {
	log := logx.WithDir(logx.WithPlugin(ctx, Name), dir)
	var (
		gitInfo *GitInfo
		node    *Project
		rust    *Project
		errs    []error
	)
	for current := filepath.Clean(dir); ; {
		if gitInfo == nil && exists(filepath.Join(current, ".git")) {
			gitInfo = &GitInfo{Root: current}
			gitCtx, cancel := context.WithTimeout(ctx, gitTimeout)
			branch, err := git.CurrentBranch(gitCtx, current)
			cancel()
			if err == nil {
				gitInfo.Branch = branch
			}
		}
		if node == nil {
			project, err := readPackageJSON(current)
			if err != nil {
				errs = append(errs, err)
			}
			node = project
		}
		if rust == nil {
			project, err := readCargoToml(current)
			if err != nil {
				errs = append(errs, err)
			}
			rust = project
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	p.state.store(dir, gitInfo, node, rust)
	log.Trace("dirparse detected", "git", gitInfo != nil, "node", node != nil, "rust", rust != nil)
	return errors.Join(errs...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func readPackageJSON(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, nil
	}
	var manifest packageJSON
	if err := json.Unmarshal(data, &manifest); err != nil {
		// A broken manifest still marks a node project.
		return &Project{Root: dir}, err
	}
	return &Project{Root: dir, Name: manifest.Name, Version: manifest.Version}, nil
}

type cargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"`
	} `toml:"package"`
}

func readCargoToml(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return nil, nil
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return &Project{Root: dir}, err
	}
	project := &Project{Root: dir, Name: manifest.Package.Name}
	// Workspace members may inherit the version as a table.
	if version, ok := manifest.Package.Version.(string); ok {
		project.Version = version
	}
	return project, nil
}
