package ast

// Arity tells Store whether an attribute should render as a single value
// or as a list, when a Skeleton is supplied (spec.md §5's scalar-vs-list
// arity table). Grounded on alioth's DumpAbs, which consults the same
// per-(non-terminal,attribute) shape table while rendering.
type Arity int

const (
	// ArityAuto lets Store infer arity from how many nodes are actually
	// stored under the attribute (exactly 1 -> scalar, otherwise -> list).
	ArityAuto Arity = iota
	ArityScalar
	ArityList
)

// Skeleton is the subset of *skeleton.Skeleton that Store needs: the
// per-(non-terminal, attribute) arity a grammar author declared, used to
// force a single-child attribute to still render as a one-element list
// (or vice versa) instead of guessing from the live tree shape. Defined
// locally so this package never has to import skeleton.
type Skeleton interface {
	Arity(ntrm, attr string) Arity
}

// StoreOptions controls Store's rendering.
type StoreOptions struct {
	// Unfold, when true, renders every terminal as a nested
	// {"text": ..., "term": name} object instead of collapsing it to its
	// raw text. Mirrors alioth's DumpRaw vs DumpAbs distinction.
	Unfold bool
	// Skeleton supplies per-attribute arity; nil means ArityAuto for
	// every attribute.
	Skeleton Skeleton
}

// Store renders the tree rooted at n into a structured value built from
// map[string]any, []any, and string -- suitable for json.Marshal or
// direct inspection (spec.md §4.F's store(opts)).
func Store(n Node, opts StoreOptions) any {
	if n == nil {
		return nil
	}
	if t, ok := n.(*Term); ok {
		return storeTerm(t, opts)
	}
	if r, ok := n.(*Root); ok {
		return storeNtrm(&r.Ntrm, opts)
	}
	return storeNtrm(n.(*Ntrm), opts)
}

func storeTerm(t *Term, opts StoreOptions) any {
	if !opts.Unfold {
		return t.Text()
	}
	obj := map[string]any{
		"term": t.Name(),
		"text": t.Text(),
	}
	if len(t.Attrs) > 0 {
		attrs := map[string]any{}
		for k, v := range t.Attrs {
			attrs[k] = v
		}
		obj["attrs"] = attrs
	}
	return obj
}

func storeNtrm(n *Ntrm, opts StoreOptions) any {
	obj := map[string]any{"ntrm": n.Name()}
	for key, vals := range n.Attributes {
		arity := ArityAuto
		if opts.Skeleton != nil {
			arity = opts.Skeleton.Arity(n.Name(), key)
		}
		obj[key] = storeAttr(vals, arity, opts)
	}
	return obj
}

func storeAttr(vals []Node, arity Arity, opts StoreOptions) any {
	switch arity {
	case ArityList:
		return storeList(vals, opts)
	case ArityScalar:
		if len(vals) == 0 {
			return nil
		}
		return Store(vals[0], opts)
	default: // ArityAuto
		if len(vals) == 1 {
			return Store(vals[0], opts)
		}
		return storeList(vals, opts)
	}
}

func storeList(vals []Node, opts StoreOptions) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = Store(v, opts)
	}
	return out
}
