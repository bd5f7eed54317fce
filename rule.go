package formrules

// Entry is one item of a Rules list: a Rule or a Resolver.
type Entry interface {
	entry()
}

// Rule validates a single field value.
//
// Validate reports false for values that fail the rule. A non-nil error is
// reserved for malformed nested rule trees and aborts the whole call.
type Rule interface {
	Entry
	Name() string
	Message(value any) string
	Validate(value any, ctx Context) (bool, error)
}

// MessageFunc produces the error message recorded when a rule fails.
type MessageFunc func(value any) string

// Predicate reports whether value satisfies a rule.
type Predicate func(value any, ctx Context) bool

// Resolver picks the rule for a field at traversal time. Returning nil means
// no rule applies to this visit.
type Resolver func(rc ResolveContext) Rule

func (Resolver) entry() {}

// childCollector is implemented by rules that replace the flat message list
// at their path with a nested error structure.
type childCollector interface {
	collectChildren(value any, ctx Context) (any, error)
}

type simpleRule struct {
	name    string
	message MessageFunc
	valid   Predicate
}

// NewRule builds a rule from a name, a message producer and a predicate.
// A nil message producer yields no message on failure.
func NewRule(name string, message MessageFunc, valid Predicate) Rule {
	if valid == nil {
		panic("formrules.NewRule: predicate must not be nil")
	}
	return &simpleRule{name: name, message: message, valid: valid}
}

func (*simpleRule) entry()         {}
func (r *simpleRule) Name() string { return r.name }

func (r *simpleRule) Message(value any) string {
	if r.message == nil {
		return ""
	}
	return r.message(value)
}

func (r *simpleRule) Validate(value any, ctx Context) (bool, error) {
	return r.valid(value, ctx), nil
}

// fixedMessage returns a MessageFunc that ignores the value.
func fixedMessage(msg string) MessageFunc {
	return func(any) string { return msg }
}
