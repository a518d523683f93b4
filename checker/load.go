package checker

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/packages"
)

var loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
	packages.NeedSyntax | packages.NeedTypesInfo

// FileSet returns the file set diagnostics resolve against.
func (e *Engine) FileSet() *token.FileSet {
	return e.fset
}

// LoadAndCheck loads the packages matching the patterns with full syntax
// for the whole dependency graph, harvests declarations everywhere, and
// checks the matched packages. The engine's prior knowledge (summaries,
// facts) stays in force. Overlay layers unsaved file contents over the
// on-disk sources; nil means disk only.
func (e *Engine) LoadAndCheck(dir string, overlay map[string][]byte, patterns ...string) ([]Diagnostic, error) {
	cfg := &packages.Config{
		Mode:    loadMode,
		Dir:     dir,
		Fset:    e.fset,
		Overlay: overlay,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return nil, fmt.Errorf("%d packages had load errors", n)
	}

	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if p.TypesInfo != nil {
			e.CollectDeclarations(p.Syntax, p.TypesInfo)
		}
	})

	start := len(e.diags)
	for _, p := range pkgs {
		if p.TypesInfo != nil {
			e.CheckPackage(p.Syntax, p.TypesInfo)
		}
	}
	return e.diags[start:], nil
}

// CheckPatterns is the one-shot entry point: fresh engine, disk sources.
func CheckPatterns(dir string, patterns ...string) ([]Diagnostic, *token.FileSet, error) {
	return CheckPatternsOverlay(dir, nil, patterns...)
}

// CheckPatternsOverlay is CheckPatterns with unsaved file contents layered
// over the on-disk sources, for editor integration.
func CheckPatternsOverlay(dir string, overlay map[string][]byte, patterns ...string) ([]Diagnostic, *token.FileSet, error) {
	e := NewEngine(token.NewFileSet())
	diags, err := e.LoadAndCheck(dir, overlay, patterns...)
	if err != nil {
		return nil, nil, err
	}
	return diags, e.fset, nil
}
