package skeleton

import "github.com/vellumlang/vellum/ast"

// Arity answers ast.Skeleton: how many values Store should expect for
// ntrm's attr, based on the deduced common shape (falling back to the
// full, un-intersected shape whenever attr is not common to every form,
// which covers every attr of a non-terminal with no named forms at all).
func (sk *Skeleton) Arity(ntrm, attr string) ast.Arity {
	sym, ok := sk.Syntax.LookupSymbol(ntrm)
	if !ok {
		return ast.ArityAuto
	}
	structure, ok := sk.Structures[sym]
	if !ok {
		return ast.ArityAuto
	}

	a, ok := structure.CommonAttributes[attr]
	if !ok {
		a, ok = structure.Attributes[attr]
		if !ok {
			return ast.ArityAuto
		}
	}
	if !a.IsSingle {
		return ast.ArityList
	}
	return ast.ArityScalar
}

var _ ast.Skeleton = (*Skeleton)(nil)
