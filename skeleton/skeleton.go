// Package skeleton deduces, from a built Syntax alone, the attribute
// *shape* every non-terminal's productions share: which attribute names
// exist, whether each is single- or multi-valued, whether it can be
// absent, and which symbols are candidate fillers. Component H of the
// parser-generator pipeline (spec.md §4.H).
//
// Grounded directly on alioth's Skeleton::Deduce
// (original_source/src/skeleton.cpp): the same three-pass structure
// (full fixed-point attribute analysis, per-formula snapshot, per-form
// merge) and the same final common-attribute intersection. Renamed to
// Go idiom (exported structs instead of a single nested C++ struct,
// maps keyed by syntax.Symbol instead of alioth's SymbolID) but the
// growing/fixed-point loop and the per-form merge rules are a direct
// translation.
package skeleton

import "github.com/vellumlang/vellum/syntax"

// Attribute is one attribute name's deduced shape.
type Attribute struct {
	Candidates map[syntax.Symbol]bool
	IsSingle   bool
	IsOptional bool
}

func newAttribute() *Attribute {
	return &Attribute{Candidates: map[syntax.Symbol]bool{}, IsSingle: true}
}

func (a *Attribute) clone() *Attribute {
	c := &Attribute{Candidates: map[syntax.Symbol]bool{}, IsSingle: a.IsSingle, IsOptional: a.IsOptional}
	for k := range a.Candidates {
		c.Candidates[k] = true
	}
	return c
}

func sameShape(a, b *Attribute) bool {
	if a.IsSingle != b.IsSingle || a.IsOptional != b.IsOptional {
		return false
	}
	if len(a.Candidates) != len(b.Candidates) {
		return false
	}
	for k := range a.Candidates {
		if !b.Candidates[k] {
			return false
		}
	}
	return true
}

// Structure is one non-terminal's deduced skeleton: its full attribute
// shape, the shape grouped per named form, and the shape common to
// every form.
type Structure struct {
	Attributes       map[string]*Attribute
	FormedAttributes map[string]map[string]*Attribute
	CommonAttributes map[string]*Attribute
}

func newStructure() *Structure {
	return &Structure{
		Attributes:       map[string]*Attribute{},
		FormedAttributes: map[string]map[string]*Attribute{},
		CommonAttributes: map[string]*Attribute{},
	}
}

// Skeleton is the deduced attribute shape of every non-terminal in a
// Syntax, plus the unfold-equivalence map between them.
type Skeleton struct {
	Syntax      *syntax.Syntax
	Structures  map[syntax.Symbol]*Structure
	equivalents map[syntax.Symbol][]syntax.Symbol // child -> parents that unfold onto it
}

func (s *Skeleton) structureOf(sym syntax.Symbol) *Structure {
	st, ok := s.Structures[sym]
	if !ok {
		st = newStructure()
		s.Structures[sym] = st
	}
	return st
}

// unfoldAttrs returns the attribute map an unfold body symbol contributes
// to its parent. A terminal can be unfolded onto directly (the
// non-terminal becomes a bare pass-through for that token) and
// contributes no attributes of its own, so this never allocates a
// Structure entry for a terminal symbol.
func (s *Skeleton) unfoldAttrs(sym syntax.Symbol) map[string]*Attribute {
	if sym.IsTerminal() {
		return nil
	}
	return s.structureOf(sym).Attributes
}

// Deduce runs the three-pass attribute-shape analysis over syn.
func Deduce(syn *syntax.Syntax) *Skeleton {
	sk := &Skeleton{
		Syntax:      syn,
		Structures:  map[syntax.Symbol]*Structure{},
		equivalents: map[syntax.Symbol][]syntax.Symbol{},
	}

	sk.collectEquivalences(syn)

	// Pass 1: full fixed-point attribute analysis per non-terminal head.
	growing := true
	for growing {
		growing = false
		for _, f := range syn.Formulas {
			structure := sk.structureOf(f.Head)
			seen := map[string]bool{}
			for _, bs := range f.Body {
				if bs.Attr == "" {
					continue
				}
				if bs.Attr == syntax.AttrUnfold {
					unfold := sk.unfoldAttrs(bs.Sym)
					for name, income := range unfold {
						attr, existed := structure.Attributes[name]
						if !existed {
							attr = newAttribute()
							structure.Attributes[name] = attr
						}
						if seen[name] {
							if attr.IsSingle {
								growing = true
							}
							attr.IsSingle = false
						} else {
							seen[name] = true
						}
						if !income.IsSingle && attr.IsSingle {
							growing = true
							attr.IsSingle = false
						}
						for id := range income.Candidates {
							if attr.Candidates[id] {
								continue
							}
							attr.Candidates[id] = true
							growing = true
						}
					}
					continue
				}

				attr, existed := structure.Attributes[bs.Attr]
				if !existed {
					attr = newAttribute()
					structure.Attributes[bs.Attr] = attr
				}
				if seen[bs.Attr] {
					if attr.IsSingle {
						growing = true
					}
					attr.IsSingle = false
				} else {
					seen[bs.Attr] = true
				}
				if !attr.Candidates[bs.Sym] {
					attr.Candidates[bs.Sym] = true
					growing = true
				}
			}
		}
	}

	// Pass 2: per-formula snapshot, built from the converged per-head
	// Attributes maps above (still unable to tell optionality apart).
	formulaAttrs := make([]map[string]*Attribute, len(syn.Formulas))
	for i, f := range syn.Formulas {
		attrs := map[string]*Attribute{}
		seen := map[string]bool{}
		for _, bs := range f.Body {
			if bs.Attr == "" {
				continue
			}
			if bs.Attr == syntax.AttrUnfold {
				unfold := sk.unfoldAttrs(bs.Sym)
				for name, income := range unfold {
					attr, ok := attrs[name]
					if !ok {
						attr = newAttribute()
						attrs[name] = attr
					}
					if seen[name] || !income.IsSingle {
						attr.IsSingle = false
					}
					seen[name] = true
					for id := range income.Candidates {
						attr.Candidates[id] = true
					}
				}
				continue
			}
			attr, ok := attrs[bs.Attr]
			if !ok {
				attr = newAttribute()
				attrs[bs.Attr] = attr
			}
			if seen[bs.Attr] {
				attr.IsSingle = false
			}
			seen[bs.Attr] = true
			attr.Candidates[bs.Sym] = true
		}
		formulaAttrs[i] = attrs
	}

	// Pass 3: merge each formula's snapshot into its named form's shape.
	for i, f := range syn.Formulas {
		if f.Form == "" {
			continue
		}
		structure := sk.structureOf(f.Head)
		snapshot := formulaAttrs[i]

		formed, ok := structure.FormedAttributes[f.Form]
		if !ok {
			clone := map[string]*Attribute{}
			for k, v := range snapshot {
				clone[k] = v.clone()
			}
			structure.FormedAttributes[f.Form] = clone
			continue
		}

		seen := map[string]bool{}
		for name, income := range snapshot {
			seen[name] = true
			attr, existed := formed[name]
			if !existed {
				attr = newAttribute()
				attr.IsOptional = true
				formed[name] = attr
			}
			attr.IsSingle = attr.IsSingle && income.IsSingle
			for id := range income.Candidates {
				attr.Candidates[id] = true
			}
		}
		for name, attr := range formed {
			if !seen[name] {
				attr.IsOptional = true
			}
		}
	}

	sk.deduceCommon()
	sk.stripIntermediate(syn)
	return sk
}

// deduceCommon intersects every form's shape per non-terminal: an
// attribute survives only if every form defines it identically.
func (sk *Skeleton) deduceCommon() {
	for _, structure := range sk.Structures {
		if len(structure.FormedAttributes) == 0 {
			continue
		}
		forms := sortedFormNames(structure.FormedAttributes)
		common := map[string]*Attribute{}
		for name, attr := range structure.FormedAttributes[forms[0]] {
			common[name] = attr.clone()
		}
		for _, form := range forms {
			formed := structure.FormedAttributes[form]
			drop := map[string]bool{}
			for name := range common {
				drop[name] = true
			}
			for name, attr := range formed {
				cur, ok := common[name]
				if !ok {
					continue
				}
				if !sameShape(cur, attr) {
					delete(common, name)
					continue
				}
				delete(drop, name)
			}
			for name := range drop {
				delete(common, name)
			}
		}
		structure.CommonAttributes = common
	}
}

func sortedFormNames(m map[string]map[string]*Attribute) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
