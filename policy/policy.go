// Package policy handles ifc.toml project configuration.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Policy represents an ifc.toml project configuration.
type Policy struct {
	Project   Project   `toml:"project"`
	Lattice   Lattice   `toml:"lattice"`
	Allowlist Allowlist `toml:"allowlist"`
	Summaries Summaries `toml:"summaries"`

	// Dir is the directory containing the ifc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata and the packages the checker scans.
type Project struct {
	Name string   `toml:"name"`
	Dirs []string `toml:"dirs"`
}

// Lattice declares the project's principals and labels. Every label names
// the set of principals whose information it may hold; the ordering falls
// out of set inclusion, so no pair is ever written by hand.
type Lattice struct {
	Package    string      `toml:"package"`
	Principals []string    `toml:"principals"`
	Labels     []LabelSpec `toml:"label"`
}

// LabelSpec is one declared label.
type LabelSpec struct {
	Name       string   `toml:"name"`
	Principals []string `toml:"principals"`
}

// Allowlist extends the built-in call allowlist with project-trusted
// function names.
type Allowlist struct {
	Extra []string `toml:"extra"`
}

// Summaries configures where the standalone checker keeps package
// summaries between runs.
type Summaries struct {
	Dir string `toml:"dir"`
}

// Load parses an ifc.toml file from the given directory.
func Load(dir string) (*Policy, error) {
	path := filepath.Join(dir, "ifc.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var p Policy
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(p.Project.Dirs) == 0 {
		p.Project.Dirs = []string{"."}
	}
	if p.Summaries.Dir == "" {
		p.Summaries.Dir = filepath.Join(".seclat", "summaries")
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// FindAndLoad walks up from startDir to find an ifc.toml file, then loads
// and returns the policy. Returns nil if no policy file is found.
func FindAndLoad(startDir string) (*Policy, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "ifc.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (p *Policy) validate() error {
	known := make(map[string]bool, len(p.Lattice.Principals))
	for _, pr := range p.Lattice.Principals {
		if pr == "" {
			return fmt.Errorf("empty principal name")
		}
		if known[pr] {
			return fmt.Errorf("duplicate principal %q", pr)
		}
		known[pr] = true
	}

	seen := make(map[string]bool, len(p.Lattice.Labels))
	for _, l := range p.Lattice.Labels {
		if l.Name == "" {
			return fmt.Errorf("label with empty name")
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate label %q", l.Name)
		}
		seen[l.Name] = true
		for _, pr := range l.Principals {
			if !known[pr] {
				return fmt.Errorf("label %q names unknown principal %q", l.Name, pr)
			}
		}
	}
	return nil
}

// Edge is one derived ordering pair: Hi may hold everything Lo may hold.
type Edge struct {
	Hi, Lo string
}

// Edges derives every ordering pair from principal-set inclusion. Strict
// superset inclusion is transitive, so the result already contains the
// transitive closure.
func (p *Policy) Edges() []Edge {
	sets := make(map[string]map[string]bool, len(p.Lattice.Labels))
	for _, l := range p.Lattice.Labels {
		s := make(map[string]bool, len(l.Principals))
		for _, pr := range l.Principals {
			s[pr] = true
		}
		sets[l.Name] = s
	}

	var edges []Edge
	for _, hi := range p.Lattice.Labels {
		for _, lo := range p.Lattice.Labels {
			if hi.Name == lo.Name {
				continue
			}
			if strictSuperset(sets[hi.Name], sets[lo.Name]) {
				edges = append(edges, Edge{Hi: hi.Name, Lo: lo.Name})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Hi != edges[j].Hi {
			return edges[i].Hi < edges[j].Hi
		}
		return edges[i].Lo < edges[j].Lo
	})
	return edges
}

func strictSuperset(hi, lo map[string]bool) bool {
	if len(hi) <= len(lo) {
		return false
	}
	for pr := range lo {
		if !hi[pr] {
			return false
		}
	}
	return true
}

// ScanDirPaths returns absolute paths for the configured scan directories.
func (p *Policy) ScanDirPaths() []string {
	var paths []string
	for _, d := range p.Project.Dirs {
		paths = append(paths, filepath.Join(p.Dir, d))
	}
	return paths
}

// SummaryDir returns the absolute path of the summary cache directory.
func (p *Policy) SummaryDir() string {
	if filepath.IsAbs(p.Summaries.Dir) {
		return p.Summaries.Dir
	}
	return filepath.Join(p.Dir, p.Summaries.Dir)
}
