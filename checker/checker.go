// Package checker validates checked blocks and side-effect-free functions.
//
// The checker is the enforcement half of the framework: it finds every
// secret.Block and secret.BlockUnit call in a typed package, validates the
// block's shape, and walks every statement and expression of the body,
// discharging each operation against the purity kernel, the safe-op
// surface, the standard-library allowlist, and the declared label lattice.
// A program that produces no diagnostics has the non-leakage property: no
// value inside a block derives from a secret whose label the block's label
// does not dominate, and no operation inside a block performs observable
// work outside an Unchecked splice.
package checker

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/latticelabs/seclat/purity"
)

// Import paths of the framework packages the checker treats specially.
const (
	secretPath  = "github.com/latticelabs/seclat/secret"
	latticePath = "github.com/latticelabs/seclat/lattice"
	safeopsPath = "github.com/latticelabs/seclat/safeops"
	purityPath  = "github.com/latticelabs/seclat/purity"
)

// Directive comments recognized on function and type declarations.
const (
	DirectiveSideEffectFree = "//ifc:sideeffectfree"
	DirectiveDeriveISEF     = "//ifc:derive isef"
)

// Engine checks packages. Populate cross-package knowledge (lattice pairs,
// assertions, annotated functions) before calling CheckPackage, either from
// analyzer facts, CBOR summaries, or a whole-program load.
type Engine struct {
	fset       *token.FileSet
	classifier *purity.Classifier

	// lattice holds declared MoreSecretThan pairs keyed by the full type
	// names of (hi, lo). Reflexive pairs are never stored.
	lattice map[[2]string]struct{}

	// sefFuncs holds the full names of side-effect-free annotated
	// functions, including those imported from facts.
	sefFuncs map[string]struct{}

	diags []Diagnostic
}

// NewEngine returns an engine with an empty lattice and no annotations.
func NewEngine(fset *token.FileSet) *Engine {
	return &Engine{
		fset:       fset,
		classifier: purity.NewClassifier(nil),
		lattice:    make(map[[2]string]struct{}),
		sefFuncs:   make(map[string]struct{}),
	}
}

// AddLatticePair records that hi is at least as secret as lo.
func (e *Engine) AddLatticePair(hi, lo string) {
	e.lattice[[2]string{hi, lo}] = struct{}{}
}

// AddAssertedType records an explicit ISEF assertion for a type name.
func (e *Engine) AddAssertedType(name string) {
	e.classifier.Assert(name)
}

// AddSideEffectFreeFunc records an annotated function by full name.
func (e *Engine) AddSideEffectFreeFunc(fullName string) {
	e.sefFuncs[fullName] = struct{}{}
}

// LatticePairs returns the declared pairs, for fact export.
func (e *Engine) LatticePairs() [][2]string {
	out := make([][2]string, 0, len(e.lattice))
	for p := range e.lattice {
		out = append(out, p)
	}
	return out
}

// SideEffectFreeFuncs returns the annotated function names, for fact export.
func (e *Engine) SideEffectFreeFuncs() []string {
	out := make([]string, 0, len(e.sefFuncs))
	for n := range e.sefFuncs {
		out = append(out, n)
	}
	return out
}

// dominates resolves a label obligation: hi must be the same label as lo or
// a declared MoreSecretThan pair.
func (e *Engine) dominates(hi, lo types.Type) bool {
	hn, ln := labelName(hi), labelName(lo)
	if hn == ln {
		return true
	}
	_, ok := e.lattice[[2]string{hn, ln}]
	return ok
}

func labelName(t types.Type) string {
	return types.TypeString(t, nil)
}

// CollectDeclarations harvests lattice pairs, ISEF assertions, and
// side-effect-free annotations from a typed package. Call it for every
// package in scope (including dependencies) before checking.
func (e *Engine) CollectDeclarations(files []*ast.File, info *types.Info) {
	for ident, inst := range info.Instances {
		obj, ok := info.Uses[ident]
		if !ok || obj.Pkg() == nil {
			continue
		}
		switch {
		case obj.Pkg().Path() == latticePath && obj.Name() == "Declare":
			if inst.TypeArgs.Len() == 2 {
				e.AddLatticePair(labelName(inst.TypeArgs.At(0)), labelName(inst.TypeArgs.At(1)))
			}
		case obj.Pkg().Path() == purityPath &&
			(obj.Name() == "AssertISEF" || obj.Name() == "AssertVSEF"):
			if inst.TypeArgs.Len() == 1 {
				e.AddAssertedType(labelName(inst.TypeArgs.At(0)))
			}
		}
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !hasDirective(fn.Doc, DirectiveSideEffectFree) {
				continue
			}
			if obj, ok := info.Defs[fn.Name].(*types.Func); ok {
				e.AddSideEffectFreeFunc(obj.FullName())
			}
		}
	}
}

// CheckPackage walks every file of a typed package and returns the
// accumulated diagnostics. CollectDeclarations must already have seen the
// package and its dependencies.
func (e *Engine) CheckPackage(files []*ast.File, info *types.Info) []Diagnostic {
	start := len(e.diags)
	for _, file := range files {
		e.checkFile(file, info)
	}
	return e.diags[start:]
}

// Diagnostics returns everything reported so far.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diags
}

func (e *Engine) checkFile(file *ast.File, info *types.Info) {
	// Annotated functions get the whole-body walk; everything else is
	// inspected for checked blocks. The walkers descend themselves, so
	// the inspection stops at each block call.
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && hasDirective(fn.Doc, DirectiveSideEffectFree) {
			e.checkSideEffectFreeFunc(fn, info)
			continue
		}
		ast.Inspect(decl, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.CallExpr:
				switch name := secretCallName(n, info); name {
				case "Block", "BlockUnit":
					e.checkBlockCall(n, name == "BlockUnit", info)
					return false
				case "Wrap", "Unwrap", "UnwrapRef", "UnwrapMutRef":
					e.report(n.Pos(), IllegalEscape,
						"%s is a bridge primitive and is only legal inside a checked block", name)
				}
			case *ast.CompositeLit:
				if isScopeLiteral(n, info) {
					e.report(n.Pos(), IllegalEscape,
						"a scope cannot be constructed; the only scope is the block's parameter")
				}
			}
			return true
		})
	}
}

// isScopeLiteral reports whether a composite literal builds a secret.Scope.
// A literal scope is a forged capability wherever it appears.
func isScopeLiteral(lit *ast.CompositeLit, info *types.Info) bool {
	t := info.TypeOf(lit)
	if t == nil {
		return false
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == secretPath && obj.Name() == "Scope"
}

// secretCallName returns the name of the secret-package function a call
// invokes, or "" when the call targets anything else.
func secretCallName(call *ast.CallExpr, info *types.Info) string {
	fn := calleeFunc(call, info)
	if fn == nil || fn.Pkg() == nil || fn.Pkg().Path() != secretPath {
		return ""
	}
	return fn.Name()
}

// calleeFunc resolves the called function, looking through parentheses and
// explicit instantiations.
func calleeFunc(call *ast.CallExpr, info *types.Info) *types.Func {
	fun := ast.Unparen(call.Fun)
	switch f := fun.(type) {
	case *ast.Ident:
		if fn, ok := info.Uses[f].(*types.Func); ok {
			return fn
		}
	case *ast.SelectorExpr:
		if fn, ok := info.Uses[f.Sel].(*types.Func); ok {
			return fn
		}
	case *ast.IndexExpr:
		return calleeFunc(&ast.CallExpr{Fun: f.X}, info)
	case *ast.IndexListExpr:
		return calleeFunc(&ast.CallExpr{Fun: f.X}, info)
	}
	return nil
}

// instanceTypeArgs returns the type arguments a call was instantiated with.
func instanceTypeArgs(call *ast.CallExpr, info *types.Info) *types.TypeList {
	fun := ast.Unparen(call.Fun)
	var ident *ast.Ident
	switch f := fun.(type) {
	case *ast.Ident:
		ident = f
	case *ast.SelectorExpr:
		ident = f.Sel
	case *ast.IndexExpr:
		return instanceTypeArgs(&ast.CallExpr{Fun: f.X}, info)
	case *ast.IndexListExpr:
		return instanceTypeArgs(&ast.CallExpr{Fun: f.X}, info)
	}
	if ident == nil {
		return nil
	}
	if inst, ok := info.Instances[ident]; ok {
		return inst.TypeArgs
	}
	return nil
}

func hasDirective(doc *ast.CommentGroup, directive string) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == directive {
			return true
		}
	}
	return false
}
