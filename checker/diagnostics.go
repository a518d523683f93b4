package checker

import (
	"fmt"
	"go/token"
)

// Code identifies which obligation a construct failed to discharge.
type Code string

const (
	// NonISEFValue: a value of a type not proven invisibly side-effect
	// free crosses into a checked block.
	NonISEFValue Code = "NonISEFValue"

	// NonDischargedOperator: an operator was applied to operands that do
	// not satisfy the corresponding safe-op obligation.
	NonDischargedOperator Code = "NonDischargedOperator"

	// UnapprovedCall: a function was called inside a block that is neither
	// allowlisted nor annotated side-effect-free.
	UnapprovedCall Code = "UnapprovedCall"

	// LabelTooLow: the block's label does not dominate an input secret's
	// label.
	LabelTooLow Code = "LabelTooLow"

	// IllegalEscape: declassification, construction, or a bridge primitive
	// appeared in the wrong syntactic position.
	IllegalEscape Code = "IllegalEscape"

	// MissingTerminator: a value-producing block does not end in
	// `return secret.Wrap(sc, expr)`.
	MissingTerminator Code = "MissingTerminator"
)

// Diagnostic is one failed obligation, positioned at the offending
// construct.
type Diagnostic struct {
	Pos     token.Pos
	Code    Code
	Message string
}

// Format renders the diagnostic with a resolved source position.
func (d Diagnostic) Format(fset *token.FileSet) string {
	return fmt.Sprintf("%s: %s: %s", fset.Position(d.Pos), d.Code, d.Message)
}

func (e *Engine) report(pos token.Pos, code Code, format string, args ...any) {
	e.diags = append(e.diags, Diagnostic{
		Pos:     pos,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}
