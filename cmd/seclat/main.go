// seclat CLI - checks information-flow obligations and runs the generators
package main

import (
	"flag"
	"fmt"
	"go/token"
	"os"
	"path"
	"path/filepath"

	"github.com/latticelabs/seclat/checker"
	"github.com/latticelabs/seclat/gen"
	"github.com/latticelabs/seclat/policy"
	"github.com/latticelabs/seclat/safeops"
	"github.com/latticelabs/seclat/server"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "check":
		runCheck(args[1:])
	case "gen":
		runGen(args[1:])
	case "lsp":
		runLsp()
	default:
		fmt.Fprintf(os.Stderr, "seclat: unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: seclat <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  check [patterns]   Check packages; exits nonzero on any violation\n")
	fmt.Fprintf(os.Stderr, "  gen [dir]          Generate labels, assertions, and shadows per ifc.toml\n")
	fmt.Fprintf(os.Stderr, "  lsp                Start the language server on stdio\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  seclat check ./...             # Check the whole module\n")
	fmt.Fprintf(os.Stderr, "  seclat check -v ./internal/... # Verbose, one subtree\n")
	fmt.Fprintf(os.Stderr, "  seclat gen                     # Generate from ./ifc.toml\n")
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	dir := fs.String("dir", ".", "Directory to resolve patterns from")
	writeSummaries := fs.Bool("write-summaries", false, "Write the declaration summary to the policy's summary dir")
	fs.Parse(args)

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pol := loadPolicy(*dir, *verbose)
	engine := checker.NewEngine(token.NewFileSet())

	if pol != nil {
		safeops.Extend(pol.Allowlist.Extra)
		if err := checker.LoadSummaries(pol.SummaryDir(), engine); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: loading summaries: %v\n", err)
		}
	}

	diags, err := engine.LoadAndCheck(*dir, nil, patterns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, d := range diags {
		fmt.Println(d.Format(engine.FileSet()))
	}

	if pol != nil && *writeSummaries {
		name := pol.Project.Name
		if name == "" {
			name = "module"
		}
		p, err := checker.SaveSummary(pol.SummaryDir(), engine.Summary(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing summary: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote summary %s\n", p)
		}
	}

	if len(diags) > 0 {
		fmt.Fprintf(os.Stderr, "%d violations\n", len(diags))
		os.Exit(1)
	}
	if *verbose {
		fmt.Println("No violations")
	}
}

func runGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	labelsOut := fs.String("labels-out", "", "Directory for the generated labels package (default: <policy dir>/<package base name>)")
	fs.Parse(args)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	pol, err := policy.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if pol.Lattice.Package != "" {
		src, err := gen.Labels(pol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		out := *labelsOut
		if out == "" {
			out = filepath.Join(pol.Dir, path.Base(pol.Lattice.Package))
		}
		target := filepath.Join(out, "labels.go")
		if err := writeGenerated(target, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote %s\n", target)
		}
	}

	if err := generatePerPackage(pol, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLsp() {
	if err := server.NewLSP().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadPolicy(dir string, verbose bool) *policy.Policy {
	pol, err := policy.FindAndLoad(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}
	if pol != nil && verbose {
		fmt.Printf("Using policy %s\n", filepath.Join(pol.Dir, "ifc.toml"))
	}
	return pol
}

func writeGenerated(target, src string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(src), 0644)
}
