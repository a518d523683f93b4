package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

const (
	sideEffectFreeDirective = "//ifc:sideeffectfree"
	safeopsImport           = "github.com/latticelabs/seclat/safeops"
)

var binaryMirror = map[token.Token]string{
	token.ADD:     "Add",
	token.SUB:     "Sub",
	token.MUL:     "Mul",
	token.QUO:     "Div",
	token.REM:     "Rem",
	token.AND:     "BitAnd",
	token.OR:      "BitOr",
	token.XOR:     "BitXor",
	token.AND_NOT: "AndNot",
	token.SHL:     "Shl",
	token.SHR:     "Shr",
	token.EQL:     "Eq",
	token.NEQ:     "Ne",
	token.LSS:     "Lt",
	token.LEQ:     "Le",
	token.GTR:     "Gt",
	token.GEQ:     "Ge",
}

var unaryMirror = map[token.Token]string{
	token.SUB: "Neg",
	token.NOT: "Not",
	token.XOR: "BitNot",
}

// Shadows renders a *_sef.go companion for the given source file: every
// annotated function reappears as Name_sef with its operators rewritten to
// the safeops mirrors, the visible discharge artifact a reviewer can audit.
// && and || keep their short-circuit form, which a call cannot express.
// Returns "" when the file has no annotated functions.
func Shadows(filename string, src any) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", filename, err)
	}

	var shadows []*ast.FuncDecl
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil || !hasShadowDirective(fn.Doc) {
			continue
		}
		shadows = append(shadows, fn)
	}
	if len(shadows) == 0 {
		return "", nil
	}

	usesSafeops := false
	var body bytes.Buffer
	for _, fn := range shadows {
		original := fn.Name.Name
		fn.Doc = nil
		fn.Name = ast.NewIdent(original + "_sef")
		if rewriteOperators(fn) {
			usesSafeops = true
		}

		fmt.Fprintf(&body, "// %s_sef mirrors %s with each operator discharged through safeops.\n", original, original)
		if err := printer.Fprint(&body, fset, fn); err != nil {
			return "", fmt.Errorf("printing shadow of %s: %w", original, err)
		}
		body.WriteString("\n\n")
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// %s\n\n", header)
	fmt.Fprintf(&out, "package %s\n\n", file.Name.Name)
	if usesSafeops {
		fmt.Fprintf(&out, "import %q\n\n", safeopsImport)
	}
	out.Write(bytes.TrimRight(body.Bytes(), "\n"))
	out.WriteString("\n")
	return out.String(), nil
}

// rewriteOperators replaces operators bottom-up so that nested expressions
// are already in mirrored form when their parent is rebuilt.
func rewriteOperators(fn *ast.FuncDecl) bool {
	rewrote := false
	astutil.Apply(fn.Body, nil, func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.BinaryExpr:
			if name, ok := binaryMirror[n.Op]; ok {
				c.Replace(safeopsCall(name, n.X, n.Y))
				rewrote = true
			}
		case *ast.UnaryExpr:
			if name, ok := unaryMirror[n.Op]; ok {
				c.Replace(safeopsCall(name, n.X))
				rewrote = true
			}
		}
		return true
	})
	return rewrote
}

func safeopsCall(name string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent("safeops"), Sel: ast.NewIdent(name)},
		Args: args,
	}
}

func hasShadowDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == sideEffectFreeDirective {
			return true
		}
	}
	return false
}
