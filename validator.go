package formrules

// IsValid reports whether obj satisfies every rule in tree, stopping at the
// first failure. parent is nil when obj is the traversal root; only limits
// validation to one top-level field.
func IsValid(tree Tree, parent *Context, obj any, only string) (bool, error) {
	for step, err := range Walk(tree, obj, parent, only) {
		if err != nil {
			return false, err
		}
		ok, err := step.Rule.Validate(step.Value, step.Context)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Validator checks objects against a fixed rule tree. It holds no per-call
// state and is safe for concurrent use.
type Validator struct {
	tree Tree
}

// NewValidator returns a Validator bound to tree.
func NewValidator(tree Tree) *Validator { return &Validator{tree: tree} }

// Valid reports whether obj satisfies the whole tree.
func (v *Validator) Valid(obj any) (bool, error) { return IsValid(v.tree, nil, obj, "") }

// ValidField reports whether obj satisfies the subtree declared for field.
// Outcomes of sibling fields are ignored.
func (v *Validator) ValidField(obj any, field string) (bool, error) {
	return IsValid(v.tree, nil, obj, field)
}
