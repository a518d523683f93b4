package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/latticelabs/seclat/purity"
)

const deriveDirective = "//ifc:derive isef"

// Assertions renders an assertion file for every type in the package marked
// with the derive directive. Each marked type must classify ISEF; the first
// one that does not aborts generation with an error naming the offending
// component. Returns "" when nothing is marked.
func Assertions(pkgPath, pkgName string, files []*ast.File, typesPkg *types.Package) (string, error) {
	names := markedTypes(files)
	if len(names) == 0 {
		return "", nil
	}

	c := purity.NewClassifier(nil)
	for _, name := range names {
		obj := typesPkg.Scope().Lookup(name)
		if obj == nil {
			return "", fmt.Errorf("marked type %s not found in package %s", name, pkgName)
		}
		if err := c.ISEF(obj.Type()); err != nil {
			return "", fmt.Errorf("cannot derive isef for %s: %v", name, err)
		}
	}

	f := jen.NewFilePathName(pkgPath, pkgName)
	f.HeaderComment(header)
	defs := make([]jen.Code, 0, len(names))
	for _, name := range names {
		defs = append(defs, jen.Id("_").Op("=").
			Qual(purityPath, "AssertISEF").Index(jen.Id(name)).Call())
	}
	f.Var().Defs(defs...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering assertion file: %w", err)
	}
	return buf.String(), nil
}

// markedTypes returns the names of types carrying the derive directive, in
// declaration order. The directive may sit on the type keyword or on an
// individual spec inside a grouped declaration.
func markedTypes(files []*ast.File) []string {
	var names []string
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			declMarked := hasDeriveDirective(gen.Doc)
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if declMarked || hasDeriveDirective(ts.Doc) {
					names = append(names, ts.Name.Name)
				}
			}
		}
	}
	return names
}

func hasDeriveDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == deriveDirective {
			return true
		}
	}
	return false
}
