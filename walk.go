package formrules

import "iter"

// Step is one (value, context, rule) triple produced by Walk.
type Step struct {
	Value   any
	Context Context
	Rule    Rule
}

// Walk lazily yields one Step per rule applicable to obj, depth first in
// declaration order. parent is nil when obj is the traversal root. When only
// is non-empty, top-level fields with another name are skipped, although
// malformed declarations are still reported.
//
// A malformed declaration is yielded as (Step{}, err) and ends the sequence.
func Walk(tree Tree, obj any, parent *Context, only string) iter.Seq2[Step, error] {
	return func(yield func(Step, error) bool) {
		walk(tree, obj, parent, only, nil, yield)
	}
}

// walk drives Walk. leaf, when set, is called once per visited leaf field
// before any of its rules are resolved.
func walk(tree Tree, obj any, parent *Context, only string, leaf func(Context), yield func(Step, error) bool) bool {
	for _, f := range tree {
		ctx := deriveContext(parent, obj, FieldKey(f.Name))

		kind := classify(f.Node)
		if kind == kindMalformed {
			yield(Step{}, &StructureError{Path: ctx.Path})
			return false
		}
		if only != "" && only != f.Name {
			continue
		}

		value, ok := Lookup(obj, f.Name)
		if !ok {
			value = map[string]any{}
		}

		if kind == kindBranch {
			if !walk(f.Node.(Tree), value, &ctx, "", leaf, yield) {
				return false
			}
			continue
		}

		if leaf != nil {
			leaf(ctx)
		}
		for _, e := range f.Node.(Rules) {
			rule, ok := resolve(e, ctx, value)
			if !ok {
				continue
			}
			if !yield(Step{Value: value, Context: ctx, Rule: rule}, nil) {
				return false
			}
		}
	}
	return true
}

func resolve(e Entry, ctx Context, value any) (Rule, bool) {
	switch t := e.(type) {
	case Rule:
		return t, t != nil
	case Resolver:
		if t == nil {
			return nil, false
		}
		r := t(ResolveContext{Context: ctx, Value: value})
		return r, r != nil
	default:
		return nil, false
	}
}
