package checker

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/latticelabs/seclat/safeops"
)

// walker carries the state of one checked-block (or annotated-function)
// walk. Every statement and expression of the body passes through it; each
// construct either discharges its obligation or produces a diagnostic.
type walker struct {
	e    *Engine
	info *types.Info

	// label is the block's declared label; nil while checking the body of
	// a side-effect-free function, where no bridge primitive is legal.
	label types.Type

	// scopeObj is the object of the block's Scope parameter.
	scopeObj types.Object

	// terminator is the one return statement a value block may contain.
	terminator *ast.ReturnStmt

	// allowReturns permits ordinary returns (function bodies, closures).
	allowReturns bool

	// closures tracks local variables bound to function literals whose
	// bodies this walker has already discharged.
	closures map[types.Object]bool

	// locals holds every binding the checked body itself introduces.
	// Stores may target only these; writing anything captured from the
	// enclosing function moves information out of the block.
	locals map[types.Object]bool

	// readonly marks locals bound to UnwrapRef results. Storing through
	// them would grant the write access only UnwrapMutRef hands out.
	readonly map[types.Object]bool
}

// builtins callable inside a block. Allocation builtins are admitted the
// way the original admits Vec::new: the allocation is invisible as long as
// the element type is ISEF.
var allowedBuiltins = map[string]bool{
	"len": true, "cap": true, "append": true, "copy": true,
	"make": true, "new": true, "delete": true, "clear": true,
	"min": true, "max": true, "real": true, "imag": true, "complex": true,
}

func (e *Engine) checkBlockCall(call *ast.CallExpr, unit bool, info *types.Info) {
	if len(call.Args) != 1 {
		e.report(call.Pos(), IllegalEscape, "checked block takes exactly one body argument")
		return
	}
	lit, ok := ast.Unparen(call.Args[0]).(*ast.FuncLit)
	if !ok {
		e.report(call.Args[0].Pos(), IllegalEscape,
			"checked block body must be a function literal, not a value of function type")
		return
	}

	w := &walker{
		e:        e,
		info:     info,
		closures: make(map[types.Object]bool),
		locals:   make(map[types.Object]bool),
		readonly: make(map[types.Object]bool),
	}

	// Resolve the Scope parameter and the block's label from it.
	params := lit.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) != 1 {
		e.report(lit.Pos(), IllegalEscape, "checked block body must take a single scope parameter")
		return
	}
	scopeIdent := params.List[0].Names[0]
	w.scopeObj = info.Defs[scopeIdent]
	if w.scopeObj != nil {
		if named, ok := types.Unalias(w.scopeObj.Type()).(*types.Named); ok {
			if args := named.TypeArgs(); args != nil && args.Len() == 1 {
				w.label = args.At(0)
			}
		}
	}
	if w.label == nil {
		e.report(lit.Pos(), IllegalEscape, "cannot determine the block's label from its scope parameter")
		return
	}

	if !unit {
		w.terminator = terminatorOf(lit.Body)
		if w.terminator == nil {
			e.report(lit.Body.Rbrace, MissingTerminator,
				"value-producing block must end in `return secret.Wrap(sc, expr)`")
		}
	}

	for _, stmt := range lit.Body.List {
		w.stmt(stmt)
	}
}

// terminatorOf returns the final statement when it has the shape
// `return secret.Wrap(...)`, otherwise nil.
func terminatorOf(body *ast.BlockStmt) *ast.ReturnStmt {
	if len(body.List) == 0 {
		return nil
	}
	ret, ok := body.List[len(body.List)-1].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil
	}
	if _, ok := ast.Unparen(ret.Results[0]).(*ast.CallExpr); !ok {
		return nil
	}
	return ret
}

func (e *Engine) checkSideEffectFreeFunc(fn *ast.FuncDecl, info *types.Info) {
	obj, ok := info.Defs[fn.Name].(*types.Func)
	if !ok {
		return
	}
	sig := obj.Type().(*types.Signature)
	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		if err := e.classifier.ISEF(p.Type()); err != nil {
			e.report(fn.Pos(), NonISEFValue,
				"side-effect-free function %s: parameter %s: %v", obj.Name(), p.Name(), err)
		}
	}
	for i := 0; i < sig.Results().Len(); i++ {
		r := sig.Results().At(i)
		if err := e.classifier.ISEF(r.Type()); err != nil {
			e.report(fn.Pos(), NonISEFValue,
				"side-effect-free function %s: result %d: %v", obj.Name(), i, err)
		}
	}
	if fn.Body == nil {
		e.report(fn.Pos(), UnapprovedCall,
			"side-effect-free function %s has no body to check", obj.Name())
		return
	}
	w := &walker{
		e:            e,
		info:         info,
		allowReturns: true,
		closures:     make(map[types.Object]bool),
		locals:       make(map[types.Object]bool),
		readonly:     make(map[types.Object]bool),
	}
	w.bindFields(fn.Recv)
	w.bindFields(fn.Type.Params)
	w.bindFields(fn.Type.Results)
	for _, stmt := range fn.Body.List {
		w.stmt(stmt)
	}
}

// bindFields records parameter, result, and receiver names as assignable
// bindings of the body under check.
func (w *walker) bindFields(fl *ast.FieldList) {
	if fl == nil {
		return
	}
	for _, f := range fl.List {
		for _, name := range f.Names {
			if obj := w.info.Defs[name]; obj != nil {
				w.locals[obj] = true
			}
		}
	}
}

// --- statements ---

func (w *walker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case nil:
		return

	case *ast.DeclStmt:
		gen, ok := s.Decl.(*ast.GenDecl)
		if !ok {
			return
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				w.requireDefISEF(name)
			}
			for _, v := range vs.Values {
				w.expr(v)
			}
		}

	case *ast.AssignStmt:
		// A function literal bound to a fresh local becomes a callable
		// closure once its body discharges.
		if s.Tok == token.DEFINE && len(s.Lhs) == 1 && len(s.Rhs) == 1 {
			if lit, ok := ast.Unparen(s.Rhs[0]).(*ast.FuncLit); ok {
				if ident, ok := s.Lhs[0].(*ast.Ident); ok {
					w.funcLit(lit)
					if obj := w.info.Defs[ident]; obj != nil {
						w.closures[obj] = true
						w.locals[obj] = true
					}
					return
				}
			}
		}
		for _, r := range s.Rhs {
			w.expr(r)
		}
		for _, l := range s.Lhs {
			if ident, ok := l.(*ast.Ident); ok {
				if ident.Name == "_" {
					continue
				}
				if w.info.Defs[ident] != nil {
					w.requireDefISEF(ident)
					continue
				}
			}
			w.assignTarget(l)
		}
		w.markUnwrapRefBinding(s)

	case *ast.IncDecStmt:
		w.assignTarget(s.X)

	case *ast.ExprStmt:
		w.expr(s.X)

	case *ast.IfStmt:
		w.stmt(s.Init)
		w.expr(s.Cond)
		w.stmt(s.Body)
		w.stmt(s.Else)

	case *ast.ForStmt:
		w.stmt(s.Init)
		w.expr(s.Cond)
		w.stmt(s.Post)
		w.stmt(s.Body)

	case *ast.RangeStmt:
		w.rangeStmt(s)

	case *ast.SwitchStmt:
		w.stmt(s.Init)
		w.expr(s.Tag)
		for _, clause := range s.Body.List {
			cc := clause.(*ast.CaseClause)
			for _, x := range cc.List {
				w.expr(x)
			}
			for _, st := range cc.Body {
				w.stmt(st)
			}
		}

	case *ast.TypeSwitchStmt:
		w.e.report(s.Pos(), NonDischargedOperator,
			"type switch requires dynamic dispatch and cannot be discharged")

	case *ast.SelectStmt:
		w.e.report(s.Pos(), NonDischargedOperator, "select is a communication construct")

	case *ast.GoStmt:
		w.e.report(s.Pos(), UnapprovedCall,
			"go statement spawns execution outside the block; wrap it in secret.Unchecked if it is genuinely required")

	case *ast.DeferStmt:
		w.e.report(s.Pos(), UnapprovedCall, "defer runs after the block's straight-line semantics end")

	case *ast.SendStmt:
		w.e.report(s.Pos(), NonDischargedOperator, "channel send is an observable effect")

	case *ast.ReturnStmt:
		switch {
		case s == w.terminator:
			w.terminatorReturn(s)
		case w.allowReturns:
			for _, r := range s.Results {
				w.expr(r)
			}
		case w.terminator != nil:
			w.e.report(s.Pos(), MissingTerminator,
				"a checked block has a single terminating wrap; early return is not permitted")
		default:
			w.e.report(s.Pos(), MissingTerminator, "a unit block must not return")
		}

	case *ast.BlockStmt:
		for _, st := range s.List {
			w.stmt(st)
		}

	case *ast.LabeledStmt:
		w.stmt(s.Stmt)

	case *ast.BranchStmt, *ast.EmptyStmt:
		// break/continue/goto are structural.

	default:
		w.e.report(s.Pos(), NonDischargedOperator, "unsupported statement inside a checked block")
	}
}

func (w *walker) rangeStmt(s *ast.RangeStmt) {
	w.expr(s.X)
	t := w.info.TypeOf(s.X)
	if t != nil {
		switch types.Unalias(t).Underlying().(type) {
		case *types.Chan:
			w.e.report(s.X.Pos(), NonDischargedOperator, "range over a channel is a communication construct")
		case *types.Signature:
			w.e.report(s.X.Pos(), NonDischargedOperator, "range over a function value cannot be discharged")
		}
	}
	for _, v := range []ast.Expr{s.Key, s.Value} {
		if ident, ok := v.(*ast.Ident); ok && w.info.Defs[ident] != nil {
			w.requireDefISEF(ident)
		}
	}
	w.stmt(s.Body)
}

// terminatorReturn validates and walks `return secret.Wrap(sc, expr)`.
func (w *walker) terminatorReturn(s *ast.ReturnStmt) {
	call := ast.Unparen(s.Results[0]).(*ast.CallExpr)
	fn := calleeFunc(call, w.info)
	if fn == nil || fn.Pkg() == nil || fn.Pkg().Path() != secretPath || fn.Name() != "Wrap" {
		w.e.report(s.Pos(), MissingTerminator,
			"value-producing block must end in `return secret.Wrap(sc, expr)`")
		return
	}
	if len(call.Args) != 2 {
		w.e.report(call.Pos(), MissingTerminator, "wrap takes the scope and one value")
		return
	}
	w.requireScopeArg(call.Args[0])
	if args := instanceTypeArgs(call, w.info); args != nil && args.Len() == 2 {
		if err := w.e.classifier.ISEF(args.At(0)); err != nil {
			w.e.report(call.Args[1].Pos(), NonISEFValue, "wrapped value: %v", err)
		}
	}
	w.expr(call.Args[1])
}

// --- expressions ---

func (w *walker) expr(x ast.Expr) {
	switch x := x.(type) {
	case nil:
		return

	case *ast.Ident:
		w.ident(x)

	case *ast.BasicLit:
		// literals carry no effects

	case *ast.ParenExpr:
		w.expr(x.X)

	case *ast.UnaryExpr:
		if x.Op == token.ARROW {
			w.e.report(x.Pos(), NonDischargedOperator, "channel receive is a communication construct")
			return
		}
		w.requireISEF(x.X, NonDischargedOperator, "operand of "+x.Op.String())
		w.expr(x.X)

	case *ast.StarExpr:
		w.requireISEF(x.X, NonDischargedOperator, "dereference")
		w.expr(x.X)

	case *ast.BinaryExpr:
		w.requireISEF(x.X, NonDischargedOperator, "left operand of "+x.Op.String())
		w.requireISEF(x.Y, NonDischargedOperator, "right operand of "+x.Op.String())
		w.expr(x.X)
		w.expr(x.Y)

	case *ast.CallExpr:
		w.call(x)

	case *ast.IndexExpr:
		if tv, ok := w.info.Types[x.X]; ok && tv.IsType() {
			return // generic instantiation, not an index operation
		}
		if _, ok := w.info.Instances[indexIdent(x.X)]; ok && w.info.TypeOf(x.X) != nil {
			if _, isSig := w.info.TypeOf(x).(*types.Signature); isSig {
				return // explicit instantiation of a generic function
			}
		}
		w.requireISEF(x.X, NonDischargedOperator, "indexed operand")
		w.requireISEF(x.Index, NonDischargedOperator, "index")
		w.expr(x.X)
		w.expr(x.Index)

	case *ast.IndexListExpr:
		w.expr(x.X)

	case *ast.SliceExpr:
		w.requireISEF(x.X, NonDischargedOperator, "sliced operand")
		w.expr(x.X)
		w.expr(x.Low)
		w.expr(x.High)
		w.expr(x.Max)

	case *ast.SelectorExpr:
		w.selector(x)

	case *ast.CompositeLit:
		if isScopeLiteral(x, w.info) {
			w.e.report(x.Pos(), IllegalEscape,
				"a scope cannot be constructed; the only scope is the block's parameter")
			return
		}
		if t := w.info.TypeOf(x); t != nil {
			if err := w.e.classifier.ISEF(t); err != nil {
				w.e.report(x.Pos(), NonISEFValue, "composite literal: %v", err)
			}
		}
		isStruct := false
		if t := w.info.TypeOf(x); t != nil {
			_, isStruct = types.Unalias(t).Underlying().(*types.Struct)
		}
		for _, elt := range x.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				if !isStruct {
					w.expr(kv.Key)
				}
				w.expr(kv.Value)
				continue
			}
			w.expr(elt)
		}

	case *ast.FuncLit:
		w.funcLit(x)

	case *ast.TypeAssertExpr:
		w.e.report(x.Pos(), NonDischargedOperator, "type assertion requires dynamic dispatch")

	default:
		// type expressions (array, map, chan types in make etc.) are
		// handled by the constructs that use them
	}
}

func indexIdent(x ast.Expr) *ast.Ident {
	switch x := ast.Unparen(x).(type) {
	case *ast.Ident:
		return x
	case *ast.SelectorExpr:
		return x.Sel
	}
	return nil
}

func (w *walker) ident(x *ast.Ident) {
	if x.Name == "_" {
		return
	}
	obj := w.info.Uses[x]
	if obj == nil {
		return
	}
	switch obj := obj.(type) {
	case *types.Var:
		if obj == w.scopeObj {
			return
		}
		if err := w.e.classifier.ISEF(obj.Type()); err != nil {
			w.e.report(x.Pos(), NonISEFValue, "value %s: %v", x.Name, err)
		}
	case *types.Func:
		if !w.closures[obj] {
			w.e.report(x.Pos(), NonISEFValue, "function value %s cannot cross into a checked block", x.Name)
		}
	}
}

func (w *walker) selector(x *ast.SelectorExpr) {
	if base, ok := ast.Unparen(x.X).(*ast.Ident); ok {
		if _, isPkg := w.info.Uses[base].(*types.PkgName); isPkg {
			// Package-qualified reference outside a call position.
			switch obj := w.info.Uses[x.Sel].(type) {
			case *types.Var:
				if err := w.e.classifier.ISEF(obj.Type()); err != nil {
					w.e.report(x.Pos(), NonISEFValue, "package variable %s: %v", x.Sel.Name, err)
				}
			case *types.Func:
				w.e.report(x.Pos(), NonISEFValue,
					"function value %s cannot cross into a checked block", obj.FullName())
			}
			return
		}
	}
	w.expr(x.X)
	if fn, ok := w.info.Uses[x.Sel].(*types.Func); ok {
		// A method value not in call position escapes the discharge.
		w.e.report(x.Pos(), UnapprovedCall, "method value %s cannot be discharged", fn.FullName())
	}
}

func (w *walker) funcLit(lit *ast.FuncLit) {
	// Closure parameters and results must be ISEF; the body discharges
	// under the same scope, and its captures hit the ident rule.
	if w.info != nil {
		if sig, ok := w.info.TypeOf(lit).(*types.Signature); ok {
			for i := 0; i < sig.Params().Len(); i++ {
				if err := w.e.classifier.ISEF(sig.Params().At(i).Type()); err != nil {
					w.e.report(lit.Pos(), NonISEFValue, "closure parameter: %v", err)
				}
			}
		}
	}
	sub := &walker{
		e:            w.e,
		info:         w.info,
		label:        w.label,
		scopeObj:     w.scopeObj,
		allowReturns: true,
		closures:     w.closures,
		locals:       w.locals,
		readonly:     w.readonly,
	}
	sub.bindFields(lit.Type.Params)
	sub.bindFields(lit.Type.Results)
	for _, stmt := range lit.Body.List {
		sub.stmt(stmt)
	}
}

// --- calls ---

func (w *walker) call(call *ast.CallExpr) {
	// Conversion between ISEF types is a value-only operation.
	if tv, ok := w.info.Types[call.Fun]; ok && tv.IsType() {
		if err := w.e.classifier.ISEF(tv.Type); err != nil {
			w.e.report(call.Pos(), NonISEFValue, "conversion target: %v", err)
		}
		for _, a := range call.Args {
			w.expr(a)
		}
		return
	}

	// Builtins.
	if ident, ok := ast.Unparen(call.Fun).(*ast.Ident); ok {
		if b, ok := w.info.Uses[ident].(*types.Builtin); ok {
			w.builtinCall(call, b.Name())
			return
		}
	}

	fn := calleeFunc(call, w.info)
	if fn == nil {
		w.dynamicCall(call)
		return
	}
	if fn.Pkg() == nil {
		w.e.report(call.Pos(), UnapprovedCall, "call to %s cannot be discharged", fn.Name())
		return
	}

	switch fn.Pkg().Path() {
	case secretPath:
		w.secretCall(call, fn)
		return
	case safeopsPath, latticePath, purityPath:
		for _, a := range call.Args {
			w.expr(a)
		}
		return
	}

	full := fn.FullName()
	if _, ok := w.e.sefFuncs[full]; ok {
		w.walkCallArgs(call, fn)
		return
	}
	if safeops.Allowed(full) {
		w.walkCallArgs(call, fn)
		return
	}
	w.e.report(call.Pos(), UnapprovedCall,
		"%s is neither annotated %s nor allowlisted; wrap the call in secret.Unchecked if its effects are acceptable",
		full, DirectiveSideEffectFree)
}

func (w *walker) walkCallArgs(call *ast.CallExpr, fn *types.Func) {
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		if sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr); ok {
			w.expr(sel.X)
		}
	}
	for _, a := range call.Args {
		w.expr(a)
	}
}

func (w *walker) builtinCall(call *ast.CallExpr, name string) {
	if !allowedBuiltins[name] {
		w.e.report(call.Pos(), UnapprovedCall, "built-in %s is not permitted inside a checked block", name)
		return
	}
	// Allocating builtins must allocate ISEF shapes.
	switch name {
	case "make", "new", "append":
		if t := w.info.TypeOf(call); t != nil {
			if err := w.e.classifier.ISEF(t); err != nil {
				w.e.report(call.Pos(), NonISEFValue, "%s of non-ISEF type: %v", name, err)
			}
		}
	}
	for _, a := range call.Args {
		if tv, ok := w.info.Types[a]; ok && tv.IsType() {
			continue // the type argument of make/new
		}
		w.expr(a)
	}
}

// dynamicCall handles calls whose callee is not a named function: local
// closures the block itself built, immediately-invoked literals, or
// arbitrary function values (rejected).
func (w *walker) dynamicCall(call *ast.CallExpr) {
	fun := ast.Unparen(call.Fun)
	if lit, ok := fun.(*ast.FuncLit); ok {
		w.funcLit(lit)
		for _, a := range call.Args {
			w.expr(a)
		}
		return
	}
	if ident, ok := fun.(*ast.Ident); ok {
		if obj := w.info.Uses[ident]; obj != nil && w.closures[obj] {
			for _, a := range call.Args {
				w.expr(a)
			}
			return
		}
	}
	w.e.report(call.Pos(), UnapprovedCall,
		"call through a function value cannot be discharged; only closures declared inside the block may be called")
}

func (w *walker) secretCall(call *ast.CallExpr, fn *types.Func) {
	switch fn.Name() {
	case "Block":
		w.e.checkBlockCall(call, false, w.info)

	case "BlockUnit":
		w.e.checkBlockCall(call, true, w.info)

	case "Unchecked", "UncheckedUnit":
		// The escape splice: contents are deliberately not walked.

	case "Wrap":
		w.e.report(call.Pos(), IllegalEscape,
			"secret.Wrap is only legal as the block's terminating `return secret.Wrap(sc, expr)`")

	case "Unwrap", "UnwrapRef", "UnwrapMutRef":
		w.unwrapCall(call, fn)

	case "New":
		w.e.report(call.Pos(), IllegalEscape,
			"secret.New seeds values outside blocks; use Wrap at the terminator instead")

	case "Declassify", "GetValueConsume", "Ref":
		w.e.report(call.Pos(), IllegalEscape,
			"declassification inside a checked block defeats the label; declassify outside")

	default:
		for _, a := range call.Args {
			w.expr(a)
		}
	}
}

func (w *walker) unwrapCall(call *ast.CallExpr, fn *types.Func) {
	if w.scopeObj == nil {
		w.e.report(call.Pos(), IllegalEscape,
			"%s is a bridge primitive and is only legal inside a checked block", fn.Name())
		return
	}
	if len(call.Args) != 2 {
		return
	}
	w.requireScopeArg(call.Args[0])

	args := instanceTypeArgs(call, w.info)
	if args == nil || args.Len() != 3 {
		return
	}
	elem, ls, l := args.At(0), args.At(1), args.At(2)
	if err := w.e.classifier.ISEF(elem); err != nil {
		w.e.report(call.Args[1].Pos(), NonISEFValue, "unwrapped value: %v", err)
	}
	if !w.e.dominates(l, ls) {
		w.e.report(call.Pos(), LabelTooLow,
			"block label %s does not dominate secret label %s; no lattice.Declare[%s, %s] is in scope",
			labelName(l), labelName(ls), labelName(l), labelName(ls))
	}
	if fn.Name() == "UnwrapMutRef" && !w.e.dominates(ls, l) {
		w.e.report(call.Pos(), LabelTooLow,
			"mutable unwrap grants write access, so the secret's label %s must also dominate the block label %s",
			labelName(ls), labelName(l))
	}
	w.expr(call.Args[1])
}

func (w *walker) requireScopeArg(arg ast.Expr) {
	ident, ok := ast.Unparen(arg).(*ast.Ident)
	if !ok || w.info.Uses[ident] != w.scopeObj {
		w.e.report(arg.Pos(), IllegalEscape,
			"bridge primitives must use the enclosing block's scope parameter")
	}
}

func (w *walker) requireISEF(x ast.Expr, code Code, ctx string) {
	t := w.info.TypeOf(x)
	if t == nil {
		return
	}
	if b, ok := types.Unalias(t).(*types.Basic); ok && b.Info()&types.IsUntyped != 0 {
		return // untyped constants and nil
	}
	if _, ok := t.(*types.Tuple); ok {
		return
	}
	if err := w.e.classifier.ISEF(t); err != nil {
		w.e.report(x.Pos(), code, "%s: %v", ctx, err)
	}
}

func (w *walker) requireDefISEF(ident *ast.Ident) {
	if ident.Name == "_" {
		return
	}
	obj := w.info.Defs[ident]
	if obj == nil {
		return
	}
	w.locals[obj] = true
	if err := w.e.classifier.ISEF(obj.Type()); err != nil {
		w.e.report(ident.Pos(), NonISEFValue, "binding %s: %v", ident.Name, err)
	}
}

// assignTarget admits a store only when its ultimate target is a binding
// the checked body itself introduced. Stores that land on captured
// variables move information out of the block, and stores through an
// UnwrapRef borrow would grant write access the unwrap never had.
func (w *walker) assignTarget(l ast.Expr) {
	w.expr(l)
	root, indirect := rootTarget(l)
	if root == nil {
		w.e.report(l.Pos(), IllegalEscape, "cannot resolve the target of this store")
		return
	}
	if root.Name == "_" {
		return
	}
	obj := w.info.Uses[root]
	if obj == nil {
		obj = w.info.Defs[root]
	}
	if obj == nil {
		return
	}
	if indirect && w.readonly[obj] {
		w.e.report(l.Pos(), IllegalEscape,
			"%s is a read-only borrow; only UnwrapMutRef grants write access", root.Name)
		return
	}
	if !w.locals[obj] {
		w.e.report(l.Pos(), IllegalEscape,
			"assignment to %s, which is declared outside the block", root.Name)
	}
}

// rootTarget resolves the identifier a store ultimately lands on, and
// whether it is reached through a dereference, index, or field.
func rootTarget(l ast.Expr) (*ast.Ident, bool) {
	indirect := false
	for {
		switch x := ast.Unparen(l).(type) {
		case *ast.Ident:
			return x, indirect
		case *ast.StarExpr:
			l, indirect = x.X, true
		case *ast.IndexExpr:
			l, indirect = x.X, true
		case *ast.SelectorExpr:
			l, indirect = x.X, true
		default:
			return nil, indirect
		}
	}
}

// markUnwrapRefBinding records a local bound to an UnwrapRef result so
// later stores through it are rejected.
func (w *walker) markUnwrapRefBinding(s *ast.AssignStmt) {
	if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
		return
	}
	call, ok := ast.Unparen(s.Rhs[0]).(*ast.CallExpr)
	if !ok || secretCallName(call, w.info) != "UnwrapRef" {
		return
	}
	ident, ok := s.Lhs[0].(*ast.Ident)
	if !ok {
		return
	}
	obj := w.info.Defs[ident]
	if obj == nil {
		obj = w.info.Uses[ident]
	}
	if obj != nil {
		w.readonly[obj] = true
	}
}
