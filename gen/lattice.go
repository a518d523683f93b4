// Package gen generates lattice, assertion, and shadow source files.
package gen

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/latticelabs/seclat/policy"
)

const (
	header      = "Code generated by seclat gen. DO NOT EDIT."
	latticePath = "github.com/latticelabs/seclat/lattice"
	purityPath  = "github.com/latticelabs/seclat/purity"
)

// Labels renders the labels package an ifc.toml lattice section describes:
// one marker type per label and one Declare fact per derived ordering pair.
func Labels(p *policy.Policy) (string, error) {
	pkgPath := p.Lattice.Package
	if pkgPath == "" {
		return "", fmt.Errorf("ifc.toml: lattice.package is not set")
	}

	f := jen.NewFilePathName(pkgPath, path.Base(pkgPath))
	f.HeaderComment(header)

	for _, l := range p.Lattice.Labels {
		if len(l.Principals) == 0 {
			f.Commentf("%s holds information belonging to nobody.", l.Name)
		} else {
			f.Commentf("%s holds information belonging to %s.", l.Name, strings.Join(l.Principals, ", "))
		}
		f.Type().Id(l.Name).Struct(jen.Qual(latticePath, "Marker"))
	}

	edges := p.Edges()
	if len(edges) > 0 {
		defs := make([]jen.Code, 0, len(edges))
		for _, e := range edges {
			// Index with a List renders a two-argument instantiation;
			// two bare operands would render a slice expression.
			defs = append(defs, jen.Id("_").Op("=").
				Qual(latticePath, "Declare").Index(jen.List(jen.Id(e.Hi), jen.Id(e.Lo))).Call())
		}
		f.Var().Defs(defs...)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering labels package: %w", err)
	}
	return buf.String(), nil
}
