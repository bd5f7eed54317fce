// Package ruleset loads formrules trees from YAML or JSON documents.
//
// A document is a mapping from field names to either a nested mapping (a
// nested tree) or a sequence of rules:
//
//	cover:
//	  header: [required, {minLength: 2}, {maxLength: 400}]
//	questions:
//	  - minLength: 1
//	  - items:
//	      id: [required]
//	      text:
//	        - when: {scope: parent, field: isText, equals: true, then: required}
//
// Rules are written as a bare name or as a single-key mapping from name to
// argument. "items" nests a tree for list items and "when" picks a rule from
// a field of the root, parent or current object. Other names resolve through
// a Registry; besides the core rules it knows "tag" (a go-playground/validator
// tag, e.g. {tag: email}) and "schema" (an inline JSON Schema). Key order is
// preserved, so evaluation order follows the document. JSON documents are
// read by the same decoder.
package ruleset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	fr "github.com/reoring/formrules"
)

// Reserved rule names handled by the loader itself.
const (
	KeyItems = "items"
	KeyWhen  = "when"
)

// ErrMissingArg is returned by Arg.Decode when the rule was written without
// an argument.
var ErrMissingArg = errors.New("ruleset: rule argument missing")

// LoadError reports a document that cannot be turned into a rule tree.
type LoadError struct {
	Path string // document path of the offending node, e.g. questions[1].items
	Line int
	Msg  string
	Err  error
}

func (e *LoadError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("ruleset: line %d: %s", e.Line, msg)
	}
	return fmt.Sprintf("ruleset: %s (line %d): %s", e.Path, e.Line, msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Arg is the argument a rule was written with, e.g. 400 in {maxLength: 400}.
type Arg struct {
	node *yaml.Node
}

// Present reports whether the rule was given an argument.
func (a Arg) Present() bool { return a.node != nil }

// Decode decodes the argument into v.
func (a Arg) Decode(v any) error {
	if a.node == nil {
		return ErrMissingArg
	}
	return a.node.Decode(v)
}

// Factory builds a rule from its argument.
type Factory func(arg Arg) (fr.Rule, error)

// Registry maps rule names to factories. The zero value is not usable; call
// NewRegistry. A Registry must not be modified while documents are loaded.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a Registry preloaded with the built-in rules:
// required, defined, minLength and maxLength, plus tag and schema.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(fr.RuleRequired, func(Arg) (fr.Rule, error) { return fr.Required(), nil })
	r.Register(fr.RuleDefined, func(Arg) (fr.Rule, error) { return fr.Defined(), nil })
	r.Register(fr.RuleMinLength, lengthFactory(fr.MinLength))
	r.Register(fr.RuleMaxLength, lengthFactory(fr.MaxLength))
	r.Register(RuleTag, tagFactory)
	r.Register(RuleSchema, schemaFactory)
	return r
}

func lengthFactory(build func(int) fr.Rule) Factory {
	return func(arg Arg) (fr.Rule, error) {
		var n int
		if err := arg.Decode(&n); err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("length must not be negative, got %d", n)
		}
		return build(n), nil
	}
}

// Register binds name to f, replacing any previous factory. The reserved
// names "items" and "when" cannot be overridden.
func (r *Registry) Register(name string, f Factory) {
	if name == KeyItems || name == KeyWhen {
		panic("ruleset.Register: reserved rule name " + strconv.Quote(name))
	}
	if f == nil {
		delete(r.factories, name)
		return
	}
	r.factories[name] = f
}

// Parse builds a rule tree from a YAML or JSON document.
func (r *Registry) Parse(data []byte) (fr.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Msg: "invalid document", Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fr.Tree{}, nil
	}
	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Line: root.Line, Msg: "document root must be a mapping"}
	}
	return r.tree(root, "")
}

// Load reads a document from rd and parses it.
func (r *Registry) Load(rd io.Reader) (fr.Tree, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("ruleset: read: %w", err)
	}
	return r.Parse(data)
}

// LoadFile reads and parses the document at path.
func (r *Registry) LoadFile(path string) (fr.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleset: %w", err)
	}
	return r.Parse(data)
}

// Parse builds a rule tree with the built-in rules only.
func Parse(data []byte) (fr.Tree, error) { return NewRegistry().Parse(data) }

// Load reads and parses a document with the built-in rules only.
func Load(rd io.Reader) (fr.Tree, error) { return NewRegistry().Load(rd) }

// LoadFile reads and parses a document file with the built-in rules only.
func LoadFile(path string) (fr.Tree, error) { return NewRegistry().LoadFile(path) }

func (r *Registry) tree(n *yaml.Node, path string) (fr.Tree, error) {
	t := make(fr.Tree, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		name := k.Value
		node, err := r.node(v, joinPath(path, name))
		if err != nil {
			return nil, err
		}
		t = append(t, fr.F(name, node))
	}
	return t, nil
}

// node maps a field value. Scalars and empty mappings are kept as malformed
// declarations so the validator reports them with their field path.
func (r *Registry) node(v *yaml.Node, path string) (fr.Node, error) {
	v = deref(v)
	switch v.Kind {
	case yaml.MappingNode:
		if len(v.Content) == 0 {
			return fr.Tree{}, nil
		}
		return r.tree(v, path)
	case yaml.SequenceNode:
		rules := make(fr.Rules, 0, len(v.Content))
		for i, item := range v.Content {
			e, err := r.entry(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			rules = append(rules, e)
		}
		return rules, nil
	default:
		return nil, nil
	}
}

func (r *Registry) entry(n *yaml.Node, path string) (fr.Entry, error) {
	n = deref(n)
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 && n.Content[0].Value == KeyWhen {
		return r.when(deref(n.Content[1]), joinPath(path, KeyWhen))
	}
	return r.rule(n, path)
}

// rule maps a bare name or a single-key mapping to a concrete rule.
func (r *Registry) rule(n *yaml.Node, path string) (fr.Rule, error) {
	n = deref(n)
	var name string
	var arg Arg
	switch {
	case n.Kind == yaml.ScalarNode && n.Value != "":
		name = n.Value
	case n.Kind == yaml.MappingNode && len(n.Content) == 2:
		name = n.Content[0].Value
		arg = Arg{node: deref(n.Content[1])}
	default:
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "rule must be a name or a single-key mapping"}
	}

	switch name {
	case KeyItems:
		if !arg.Present() || arg.node.Kind != yaml.MappingNode {
			return nil, &LoadError{Path: path, Line: n.Line, Msg: "items expects a mapping of item fields"}
		}
		child, err := r.tree(arg.node, joinPath(path, KeyItems))
		if err != nil {
			return nil, err
		}
		return fr.ItemRules(child), nil
	case KeyWhen:
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "when cannot be nested inside then or else"}
	}

	f, ok := r.factories[name]
	if !ok {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "unknown rule " + strconv.Quote(name)}
	}
	rule, err := f(arg)
	if err != nil {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "invalid argument for " + name, Err: err}
	}
	if rule == nil {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "factory for " + name + " returned no rule"}
	}
	return rule, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
