package formrules

import "fmt"

// Built-in rule names.
const (
	RuleRequired  = "required"
	RuleDefined   = "defined"
	RuleMaxLength = "maxLength"
	RuleMinLength = "minLength"
	RuleItemRules = "itemRules"
)

// Required fails on nil, blank strings, empty lists and maps, zero numbers
// and false.
func Required() Rule {
	return NewRule(RuleRequired, fixedMessage("This field is required"), func(value any, _ Context) bool {
		return hasValue(value)
	})
}

// Defined fails unless the field is present on the object being validated.
func Defined() Rule {
	return NewRule(RuleDefined, fixedMessage("This field is undefined"), func(_ any, ctx Context) bool {
		name, ok := ctx.Key.Name()
		if !ok {
			return false
		}
		_, found := Lookup(ctx.Self, name)
		return found
	})
}

// MaxLength fails unless the value is array-like with at most n elements.
func MaxLength(n int) Rule {
	return NewRule(RuleMaxLength, fixedMessage(fmt.Sprintf("Must be no more than %d characters", n)), func(value any, _ Context) bool {
		return validateMaxLength(value, n)
	})
}

// MinLength fails unless the value is array-like with at least n elements.
func MinLength(n int) Rule {
	return NewRule(RuleMinLength, fixedMessage(fmt.Sprintf("Must be no less than %d characters", n)), func(value any, _ Context) bool {
		return validateMinLength(value, n)
	})
}

// DependOn marks fn as a rule chosen at traversal time.
func DependOn(fn func(rc ResolveContext) Rule) Resolver { return Resolver(fn) }

// ItemConverter replaces the per-item error list collected by ItemRules.
type ItemConverter func(items any, perItem []*Errors) any

// ItemRules validates every item of a list value against tree. Errors are
// collected per item instead of as messages; converter, when given, reshapes
// them. Values that are not lists have no items.
func ItemRules(tree Tree, converter ...ItemConverter) Rule {
	r := &itemRule{tree: tree}
	if len(converter) > 0 {
		r.convert = converter[0]
	}
	return r
}

type itemRule struct {
	tree    Tree
	convert ItemConverter
}

func (*itemRule) entry()             {}
func (*itemRule) Name() string       { return RuleItemRules }
func (*itemRule) Message(any) string { return "" }

func (r *itemRule) Validate(value any, ctx Context) (bool, error) {
	items, _ := listItems(value)
	for i, item := range items {
		ic := itemContext(ctx, i)
		ok, err := IsValid(r.tree, &ic, item, "")
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (r *itemRule) collectChildren(value any, ctx Context) (any, error) {
	items, _ := listItems(value)
	perItem := make([]*Errors, 0, len(items))
	for i, item := range items {
		ic := itemContext(ctx, i)
		errs, err := CollectErrors(r.tree, &ic, item, "")
		if err != nil {
			return nil, err
		}
		perItem = append(perItem, errs)
	}
	if r.convert != nil {
		return r.convert(value, perItem), nil
	}
	return perItem, nil
}
