package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPolicy(t *testing.T) {
	// Create a temporary directory with an ifc.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "payroll"
dirs = ["internal", "cmd"]

[lattice]
package = "example.com/payroll/labels"
principals = ["alice", "bob"]

[[lattice.label]]
name = "Alice"
principals = ["alice"]

[[lattice.label]]
name = "Bob"
principals = ["bob"]

[[lattice.label]]
name = "AliceBob"
principals = ["alice", "bob"]

[allowlist]
extra = ["example.com/vendor.Hash"]

[summaries]
dir = ".cache/ifc"
`
	if err := os.WriteFile(filepath.Join(dir, "ifc.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if p.Project.Name != "payroll" {
		t.Errorf("project name = %q, want payroll", p.Project.Name)
	}
	if len(p.Project.Dirs) != 2 {
		t.Errorf("project dirs count = %d, want 2", len(p.Project.Dirs))
	}
	if p.Lattice.Package != "example.com/payroll/labels" {
		t.Errorf("lattice package = %q", p.Lattice.Package)
	}
	if len(p.Lattice.Labels) != 3 {
		t.Errorf("label count = %d, want 3", len(p.Lattice.Labels))
	}
	if len(p.Allowlist.Extra) != 1 || p.Allowlist.Extra[0] != "example.com/vendor.Hash" {
		t.Errorf("allowlist extra = %v", p.Allowlist.Extra)
	}
	if p.Summaries.Dir != ".cache/ifc" {
		t.Errorf("summaries dir = %q, want .cache/ifc", p.Summaries.Dir)
	}
}

func TestLoadPolicyDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, "ifc.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(p.Project.Dirs) != 1 || p.Project.Dirs[0] != "." {
		t.Errorf("default dirs = %v, want [.]", p.Project.Dirs)
	}
	if p.Summaries.Dir != filepath.Join(".seclat", "summaries") {
		t.Errorf("default summaries dir = %q", p.Summaries.Dir)
	}
}

func TestLoadPolicyRejectsUnknownPrincipal(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[lattice]
principals = ["alice"]

[[lattice.label]]
name = "Rogue"
principals = ["mallory"]
`
	if err := os.WriteFile(filepath.Join(dir, "ifc.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "mallory") {
		t.Errorf("expected unknown-principal error, got %v", err)
	}
}

func TestLoadPolicyRejectsDuplicateLabel(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[lattice]
principals = ["alice"]

[[lattice.label]]
name = "Alice"
principals = ["alice"]

[[lattice.label]]
name = "Alice"
principals = ["alice"]
`
	if err := os.WriteFile(filepath.Join(dir, "ifc.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate label") {
		t.Errorf("expected duplicate-label error, got %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, "ifc.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if p == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if p.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", p.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	p, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if p != nil {
		t.Error("expected nil policy when no ifc.toml exists")
	}
}

func TestEdgesFollowSetInclusion(t *testing.T) {
	p := &Policy{
		Lattice: Lattice{
			Principals: []string{"alice", "bob", "carol"},
			Labels: []LabelSpec{
				{Name: "Empty", Principals: nil},
				{Name: "Alice", Principals: []string{"alice"}},
				{Name: "Bob", Principals: []string{"bob"}},
				{Name: "AliceBob", Principals: []string{"alice", "bob"}},
				{Name: "All", Principals: []string{"alice", "bob", "carol"}},
			},
		},
	}

	edges := p.Edges()
	has := func(hi, lo string) bool {
		for _, e := range edges {
			if e.Hi == hi && e.Lo == lo {
				return true
			}
		}
		return false
	}

	for _, want := range []Edge{
		{"Alice", "Empty"},
		{"AliceBob", "Alice"},
		{"AliceBob", "Bob"},
		{"All", "AliceBob"},
		// Transitive pairs are enumerated, not implied.
		{"All", "Alice"},
		{"All", "Empty"},
	} {
		if !has(want.Hi, want.Lo) {
			t.Errorf("missing edge %s >= %s", want.Hi, want.Lo)
		}
	}

	if has("Alice", "Bob") || has("Bob", "Alice") {
		t.Error("incomparable labels must not be ordered")
	}
	if has("Alice", "Alice") {
		t.Error("reflexive pairs must not be emitted")
	}
}

func TestScanDirPaths(t *testing.T) {
	p := &Policy{
		Dir:     "/app",
		Project: Project{Dirs: []string{"internal", "cmd"}},
	}

	paths := p.ScanDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/internal" {
		t.Errorf("paths[0] = %q, want /app/internal", paths[0])
	}
}
