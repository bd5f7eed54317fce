package formrules

// Node is one field declaration in a rule tree: either Rules (leaf) or Tree
// (branch). Any other shape, including an empty Tree or a nil Node, is
// malformed and fails at traversal time with a *StructureError.
type Node interface {
	node()
}

// Rules is an ordered list of rules and resolvers applied to one field value.
// An empty Rules is valid and never produces a failure.
type Rules []Entry

// Tree is an ordered list of field declarations. Declaration order drives
// both short-circuit evaluation and error ordering.
type Tree []Field

// Field binds a field name of the validated object to its declaration.
type Field struct {
	Name string
	Node Node
}

func (Rules) node() {}
func (Tree) node()  {}

// Leaf builds a Rules node from entries.
func Leaf(entries ...Entry) Rules {
	if entries == nil {
		return Rules{}
	}
	return Rules(entries)
}

// Branch builds a Tree node from fields.
func Branch(fields ...Field) Tree { return Tree(fields) }

// F is shorthand for Field{Name: name, Node: node}.
func F(name string, node Node) Field { return Field{Name: name, Node: node} }

type nodeKind uint8

const (
	kindMalformed nodeKind = iota
	kindLeaf
	kindBranch
)

func classify(n Node) nodeKind {
	switch t := n.(type) {
	case Rules:
		return kindLeaf
	case Tree:
		if len(t) == 0 {
			return kindMalformed
		}
		return kindBranch
	default:
		return kindMalformed
	}
}

// Check reports the first structural error found anywhere in t, including
// the child trees of ItemRules entries. Resolvers are not evaluated, so rules
// they would produce are not checked. Item trees are checked without data,
// so their paths carry the placeholder index [0], e.g. "list.[0].name".
func (t Tree) Check() error {
	return t.check(nil)
}

func (t Tree) check(parent *Context) error {
	for _, f := range t {
		ctx := deriveContext(parent, nil, FieldKey(f.Name))
		switch classify(f.Node) {
		case kindMalformed:
			return &StructureError{Path: ctx.Path}
		case kindBranch:
			if err := f.Node.(Tree).check(&ctx); err != nil {
				return err
			}
		case kindLeaf:
			for _, e := range f.Node.(Rules) {
				ir, ok := e.(*itemRule)
				if !ok {
					continue
				}
				item := itemContext(ctx, 0)
				if err := ir.tree.check(&item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
