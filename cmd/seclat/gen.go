package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/latticelabs/seclat/gen"
	"github.com/latticelabs/seclat/policy"
)

const genMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
	packages.NeedSyntax | packages.NeedTypesInfo

// generatePerPackage runs the derive and shadow generators over every
// package under the policy's scan dirs.
func generatePerPackage(pol *policy.Policy, verbose bool) error {
	var patterns []string
	for _, d := range pol.Project.Dirs {
		patterns = append(patterns, "./"+filepath.ToSlash(filepath.Join(d, "...")))
	}

	cfg := &packages.Config{Mode: genMode, Dir: pol.Dir}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return fmt.Errorf("%d packages had load errors", n)
	}

	for _, p := range pkgs {
		if err := generateForPackage(p, verbose); err != nil {
			return err
		}
	}
	return nil
}

func generateForPackage(p *packages.Package, verbose bool) error {
	if len(p.GoFiles) == 0 || p.Types == nil {
		return nil
	}
	pkgDir := filepath.Dir(p.GoFiles[0])

	src, err := gen.Assertions(p.PkgPath, p.Name, p.Syntax, p.Types)
	if err != nil {
		return fmt.Errorf("%s: %w", p.PkgPath, err)
	}
	if src != "" {
		target := filepath.Join(pkgDir, "ifc_assert.go")
		if err := os.WriteFile(target, []byte(src), 0644); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Wrote %s\n", target)
		}
	}

	for _, file := range p.GoFiles {
		base := filepath.Base(file)
		if strings.HasSuffix(base, "_sef.go") || base == "ifc_assert.go" {
			continue
		}
		src, err := gen.Shadows(file, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if src == "" {
			continue
		}
		target := strings.TrimSuffix(file, ".go") + "_sef.go"
		if err := os.WriteFile(target, []byte(src), 0644); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Wrote %s\n", target)
		}
	}
	return nil
}
