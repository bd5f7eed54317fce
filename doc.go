// Package formrules validates nested data objects against declarative rule
// trees.
//
// Package formrules provides:
//
// - An ordered rule tree (Tree/Rules) declaring rules per field, with nested trees for nested objects
// - Built-in rules (Required, Defined, MinLength, MaxLength, ItemRules) and context-dependent rules via DependOn
// - A lazy walker (Walk) yielding (value, context, rule) steps in declaration order
// - A validity check (IsValid/Validator) that stops at the first failure
// - An error report (CollectErrors/Collector) shaped like the rule tree
//
// Design policy:
// - Validation is read-only: input objects are never modified.
// - Malformed rule trees are programming errors reported as *StructureError; failed rules never produce errors.
// - Rule trees hold no per-call state and may be shared across goroutines.
// - Rule documents (YAML/JSON) are loaded by ruleset/, data documents by input/, and the CLI lives under cmd/formrules.
//
// Typical usage:
//
//	tree := formrules.Branch(
//	    formrules.F("cover", formrules.Branch(
//	        formrules.F("header", formrules.Leaf(formrules.Required(), formrules.MaxLength(400))),
//	    )),
//	    formrules.F("questions", formrules.Leaf(formrules.MinLength(1), formrules.ItemRules(questionTree))),
//	)
//	ok, err := formrules.NewValidator(tree).Valid(obj)
//	report, err := formrules.NewCollector(tree).Collect(obj)
package formrules
