package checker

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// isSideEffectFree marks a function object carrying the sideeffectfree
// directive, so importing packages can call it inside blocks.
type isSideEffectFree struct{}

func (*isSideEffectFree) AFact() {}

func (*isSideEffectFree) String() string { return "sideEffectFree" }

// packageDecls carries a package's lattice declarations and purity
// assertions to its importers.
type packageDecls struct {
	LatticePairs  [][2]string
	AssertedTypes []string
}

func (*packageDecls) AFact() {}

func (f *packageDecls) String() string {
	return fmt.Sprintf("declares(%d pairs, %d asserted)", len(f.LatticePairs), len(f.AssertedTypes))
}

// Analyzer runs the checker under the go/analysis driver, with facts
// carrying declarations across package boundaries.
var Analyzer = &analysis.Analyzer{
	Name:      "seclat",
	Doc:       "check information-flow obligations of checked blocks and side-effect-free functions",
	Run:       run,
	FactTypes: []analysis.Fact{new(isSideEffectFree), new(packageDecls)},
}

func run(pass *analysis.Pass) (any, error) {
	engine := NewEngine(pass.Fset)

	// Harvest this package's own declarations before merging imported
	// facts, so the exported fact carries only its contributions. Facts
	// of transitive dependencies reach every importer on their own.
	engine.CollectDeclarations(pass.Files, pass.TypesInfo)
	if pairs, asserted := engine.LatticePairs(), engine.classifier.AssertedNames(); len(pairs) > 0 || len(asserted) > 0 {
		pass.ExportPackageFact(&packageDecls{
			LatticePairs:  pairs,
			AssertedTypes: asserted,
		})
	}

	for _, pf := range pass.AllPackageFacts() {
		decls, ok := pf.Fact.(*packageDecls)
		if !ok {
			continue
		}
		for _, p := range decls.LatticePairs {
			engine.AddLatticePair(p[0], p[1])
		}
		for _, n := range decls.AssertedTypes {
			engine.AddAssertedType(n)
		}
	}
	for _, of := range pass.AllObjectFacts() {
		if _, ok := of.Fact.(*isSideEffectFree); !ok {
			continue
		}
		if fn, ok := of.Object.(*types.Func); ok {
			engine.AddSideEffectFreeFunc(fn.FullName())
		}
	}
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !hasDirective(fn.Doc, DirectiveSideEffectFree) {
				continue
			}
			if obj, ok := pass.TypesInfo.Defs[fn.Name].(*types.Func); ok {
				pass.ExportObjectFact(obj, &isSideEffectFree{})
			}
		}
	}

	for _, d := range engine.CheckPackage(pass.Files, pass.TypesInfo) {
		pass.Report(analysis.Diagnostic{
			Pos:     d.Pos,
			Message: string(d.Code) + ": " + d.Message,
		})
	}
	return nil, nil
}
