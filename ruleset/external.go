package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	fr "github.com/reoring/formrules"
)

// Names of the rules backed by external validators.
const (
	RuleTag    = "tag"
	RuleSchema = "schema"
)

var (
	tagValidatorOnce sync.Once
	tagValidator     *validator.Validate
)

func tags() *validator.Validate {
	tagValidatorOnce.Do(func() {
		tagValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return tagValidator
}

// Tag returns a rule checking the value against a go-playground/validator
// tag such as "email" or "hexcolor|rgb". Tags naming unknown validators are
// rejected.
func Tag(tag string) (fr.Rule, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, errors.New("empty validator tag")
	}
	if err := probeTag(tag); err != nil {
		return nil, err
	}
	msg := "Must satisfy " + tag
	return fr.NewRule(RuleTag, func(any) string { return msg }, func(value any, _ fr.Context) bool {
		return varOK(value, tag)
	}), nil
}

// probeTag runs tag once so that unknown validator names fail at load time
// rather than panicking during validation.
func probeTag(tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if s := fmt.Sprint(r); strings.Contains(s, "Undefined validation function") {
				err = fmt.Errorf("invalid validator tag %q: %s", tag, s)
			}
		}
	}()
	_ = tags().Var("", tag)
	return nil
}

// varOK reports whether value passes tag. Tags that cannot handle the
// value's kind panic inside the validator; such values fail the rule.
func varOK(value any, tag string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return tags().Var(value, tag) == nil
}

// Schema returns a rule checking the value against a JSON Schema document.
// doc is any JSON-like value, for example a decoded YAML mapping.
func Schema(doc any) (fr.Rule, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	const url = "schema.json"
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return fr.NewRule(RuleSchema, func(any) string { return "Does not match the schema" }, func(value any, _ fr.Context) bool {
		v, ok := schemaValue(value)
		return ok && sch.Validate(v) == nil
	}), nil
}

// schemaValue re-encodes value so that Go structs and integer types reach the
// schema validator as plain JSON values.
func schemaValue(value any) (any, bool) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return v, true
}

func tagFactory(arg Arg) (fr.Rule, error) {
	var tag string
	if err := arg.Decode(&tag); err != nil {
		return nil, err
	}
	return Tag(tag)
}

func schemaFactory(arg Arg) (fr.Rule, error) {
	var doc any
	if err := arg.Decode(&doc); err != nil {
		return nil, err
	}
	return Schema(doc)
}
