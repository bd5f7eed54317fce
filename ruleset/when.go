package ruleset

import (
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	fr "github.com/reoring/formrules"
)

// Scope selects the object a "when" condition reads from.
type Scope string

const (
	ScopeSelf   Scope = "self"
	ScopeParent Scope = "parent"
	ScopeRoot   Scope = "root"
)

type whenSpec struct {
	Scope     Scope     `yaml:"scope"`
	Field     string    `yaml:"field"`
	Equals    yaml.Node `yaml:"equals"`
	NotEquals yaml.Node `yaml:"notEquals"`
	Then      yaml.Node `yaml:"then"`
	Else      yaml.Node `yaml:"else"`
}

func present(n *yaml.Node) bool { return n.Kind != 0 }

// Condition compares a field of the scoped object with a constant.
type Condition struct {
	Scope  Scope
	Field  []string // nested field names, outermost first
	Want   any
	Negate bool
}

// Holds reports whether the condition is satisfied for rc. A missing field
// compares as nil.
func (c Condition) Holds(rc fr.ResolveContext) bool {
	var cur any
	switch c.Scope {
	case ScopeRoot:
		cur = rc.Root
	case ScopeParent:
		cur = rc.Parent
	default:
		cur = rc.Self
	}
	for _, name := range c.Field {
		v, ok := fr.Lookup(cur, name)
		if !ok {
			cur = nil
			break
		}
		cur = v
	}
	eq := reflect.DeepEqual(normalize(cur), normalize(c.Want))
	return eq != c.Negate
}

// When returns a resolver picking then when cond holds and otherwise (which
// may be nil) when it does not.
func When(cond Condition, then, otherwise fr.Rule) fr.Resolver {
	return fr.DependOn(func(rc fr.ResolveContext) fr.Rule {
		if cond.Holds(rc) {
			return then
		}
		return otherwise
	})
}

func (r *Registry) when(n *yaml.Node, path string) (fr.Entry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "when expects a mapping"}
	}
	var spec whenSpec
	if err := n.Decode(&spec); err != nil {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "invalid when", Err: err}
	}

	cond := Condition{Scope: spec.Scope}
	switch spec.Scope {
	case "":
		cond.Scope = ScopeSelf
	case ScopeSelf, ScopeParent, ScopeRoot:
	default:
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "scope must be self, parent or root"}
	}
	if spec.Field == "" {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "when requires a field"}
	}
	cond.Field = strings.Split(spec.Field, ".")

	cmp := &spec.Equals
	if present(&spec.NotEquals) {
		if present(cmp) {
			return nil, &LoadError{Path: path, Line: n.Line, Msg: "use either equals or notEquals"}
		}
		cmp, cond.Negate = &spec.NotEquals, true
	}
	if !present(cmp) {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "when requires equals or notEquals"}
	}
	if err := cmp.Decode(&cond.Want); err != nil {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "invalid comparison value", Err: err}
	}

	if !present(&spec.Then) {
		return nil, &LoadError{Path: path, Line: n.Line, Msg: "when requires then"}
	}
	then, err := r.rule(&spec.Then, joinPath(path, "then"))
	if err != nil {
		return nil, err
	}
	var otherwise fr.Rule
	if present(&spec.Else) {
		if otherwise, err = r.rule(&spec.Else, joinPath(path, "else")); err != nil {
			return nil, err
		}
	}
	return When(cond, then, otherwise), nil
}

// normalize widens numbers to float64 so YAML integers match decoded JSON.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}
