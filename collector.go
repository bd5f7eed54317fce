package formrules

import "slices"

// CollectErrors evaluates every rule in tree against obj and returns a report
// shaped like the tree. Every visited leaf field gets an entry, an empty list
// when all its rules pass or none apply. Entries are addressed relative to
// parent, which is nil when obj is the traversal root.
func CollectErrors(tree Tree, parent *Context, obj any, only string) (*Errors, error) {
	out := newErrors()
	depth := depthOf(parent)

	var failure error
	visitLeaf := func(ctx Context) {
		path := ctx.relative(depth)
		if _, ok := out.lookup(path); !ok {
			out.setAt(path, []string{})
		}
	}
	walk(tree, obj, parent, only, visitLeaf, func(step Step, err error) bool {
		if err == nil {
			err = out.record(step, depth)
		}
		if err != nil {
			failure = err
			return false
		}
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return out, nil
}

// record applies one step: a failed rule appends its message to the value at
// the step path, then a rule with nested errors overwrites that path.
func (e *Errors) record(step Step, depth int) error {
	path := step.Context.relative(depth)

	ok, err := step.Rule.Validate(step.Value, step.Context)
	if err != nil {
		return err
	}
	var msg string
	if !ok {
		msg = step.Rule.Message(step.Value)
	}

	existing, found := e.lookup(path)
	switch cur := existing.(type) {
	case []string:
		if msg != "" {
			e.setAt(path, append(cur, msg))
		}
	case []*Errors:
		// Item reports stay in front of messages from later rules.
		if msg != "" {
			mixed := make([]any, 0, len(cur)+1)
			for _, it := range cur {
				mixed = append(mixed, it)
			}
			e.setAt(path, append(mixed, msg))
		}
	case []any:
		if msg != "" {
			e.setAt(path, append(slices.Clip(cur), msg))
		}
	default:
		switch {
		case !found && msg == "":
			e.setAt(path, []string{})
		case msg != "":
			e.setAt(path, []string{msg})
		}
	}

	if cc, ok := step.Rule.(childCollector); ok {
		children, err := cc.collectChildren(step.Value, step.Context)
		if err != nil {
			return err
		}
		e.setAt(path, children)
	}
	return nil
}

// Collector builds error reports against a fixed rule tree. It holds no
// per-call state and is safe for concurrent use.
type Collector struct {
	tree Tree
}

// NewCollector returns a Collector bound to tree.
func NewCollector(tree Tree) *Collector { return &Collector{tree: tree} }

// Collect returns the report for the whole tree.
func (c *Collector) Collect(obj any) (*Errors, error) { return CollectErrors(c.tree, nil, obj, "") }

// CollectField returns the report for the subtree declared for field only.
func (c *Collector) CollectField(obj any, field string) (*Errors, error) {
	return CollectErrors(c.tree, nil, obj, field)
}
