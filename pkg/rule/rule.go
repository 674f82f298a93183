package rule

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"

	"github.com/epodak/grule/pkg/expr"
)

var (
	// ErrNoName is returned when a rule has no identifier.
	ErrNoName = errors.New("rule missing a name")

	// ErrNotCompiled is returned when a rule's match expression is evaluated
	// before compilation.
	ErrNotCompiled = errors.New("rule match expression not compiled")
)

// Condition is one predicate over the detected project attributes.
//
// Exactly one of the two forms is used:
//   - Attribute/AnyOf: matches when the attribute's value set intersects AnyOf.
//   - Flag: matches when the boolean flag attribute equals Equals
//     (true when Equals is omitted).
type Condition struct {
	// Equals is the required flag value. Defaults to true.
	Equals *bool `json:"equals,omitempty" jsonschema:"title=Equals"`
	// Attribute is the attribute name this predicate references.
	Attribute string `json:"attribute,omitempty" jsonschema:"title=Attribute"`
	// Flag is the name of a boolean flag attribute.
	Flag string `json:"flag,omitempty" jsonschema:"title=Flag"`
	// AnyOf is the set of accepted values for the attribute.
	AnyOf []string `json:"anyOf,omitempty" jsonschema:"title=Any Of" yaml:"anyOf,flow,omitempty"`
}

// Matches evaluates the predicate against the attribute map. An attribute key
// absent from attrs never matches and never errors.
func (c Condition) Matches(attrs map[string][]string) bool {
	if c.Flag != "" {
		want := true
		if c.Equals != nil {
			want = *c.Equals
		}

		got := slices.Contains(attrs[c.Flag], "true")

		return got == want
	}

	if c.Attribute == "" {
		// An empty predicate fails closed.
		return false
	}

	values, ok := attrs[c.Attribute]
	if !ok {
		return false
	}

	for _, v := range values {
		if slices.Contains(c.AnyOf, v) {
			return true
		}
	}

	return false
}

// String renders the predicate for reasoning output.
func (c Condition) String() string {
	if c.Flag != "" {
		want := true
		if c.Equals != nil {
			want = *c.Equals
		}

		return fmt.Sprintf("%s == %t", c.Flag, want)
	}

	return fmt.Sprintf("%s in %v", c.Attribute, c.AnyOf)
}

// Rule uses condition predicates, and optionally a CEL matcher, to determine
// whether its document should be recommended for a project.
//
// CEL expressions have access to variables:
//   - `attrs` (map<string, list<string>>): All detected project attributes
//
// CEL expressions must return a boolean value:
//   - attrHas(attrs, "languages", "swift") - true if the project uses Swift
//   - attrAny(attrs, "project_size", ["medium", "large"]) - true for non-small projects
//   - attrFlag(attrs, "has_testing") - true if a test suite was detected
//   - attrFlag(attrs, "has_git") && !attrHas(attrs, "team_size", "solo") - combined predicates
//
// CEL also provides standard functions like `contains`, `startsWith`,
// `matches`, along with list functions like `filter`, `exists`, `in`, and
// logical operators like `&&`, `||`, and `!`.
type Rule struct {
	matchProgram cel.Program // Compiled CEL program for the match expression.

	// Name is the unique rule identifier, e.g. "modern-swift".
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
	// Category groups related rules, e.g. "quality" or "workflow".
	Category string `json:"category,omitempty" jsonschema:"title=Category"`
	// Description is a human-readable summary of the rule document.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// Match is an optional CEL expression over the project attributes.
	Match string `json:"match,omitempty" jsonschema:"title=Match Expression"`
	// Conditions contains the predicates; any single match includes the rule.
	Conditions []Condition `json:"conditions,omitempty" jsonschema:"title=Conditions"`
	// Tags label the rule for display and filtering.
	Tags []string `json:"tags,omitempty" jsonschema:"title=Tags" yaml:"tags,flow,omitempty"`
	// Weight orders recommendations; higher weights are displayed first.
	Weight int `json:"weight,omitempty" jsonschema:"title=Weight,minimum=0,maximum=10"`
	// Always marks the rule as unconditionally recommended.
	Always bool `json:"always,omitempty" jsonschema:"title=Always"`
}

// New creates a new rule with the given name and options.
func New(name string, opts ...Opt) (*Rule, error) {
	if name == "" {
		return nil, ErrNoName
	}

	r := &Rule{Name: name}
	for _, opt := range opts {
		opt(r)
	}

	err := r.Compile()
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}

	return r, nil
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(name string, opts ...Opt) *Rule {
	r, err := New(name, opts...)
	if err != nil {
		panic(err)
	}

	return r
}

// Opt is a functional option for configuring a [Rule].
type Opt func(*Rule)

// WithCategory sets the rule category.
func WithCategory(category string) Opt {
	return func(r *Rule) {
		r.Category = category
	}
}

// WithDescription sets the rule description.
func WithDescription(description string) Opt {
	return func(r *Rule) {
		r.Description = description
	}
}

// WithWeight sets the rule weight.
func WithWeight(weight int) Opt {
	return func(r *Rule) {
		r.Weight = weight
	}
}

// WithAlways marks the rule as unconditionally recommended.
func WithAlways() Opt {
	return func(r *Rule) {
		r.Always = true
	}
}

// WithConditions sets the condition predicates.
func WithConditions(conditions ...Condition) Opt {
	return func(r *Rule) {
		r.Conditions = conditions
	}
}

// WithMatch sets the CEL match expression.
func WithMatch(match string) Opt {
	return func(r *Rule) {
		r.Match = match
	}
}

// WithTags sets the rule tags.
func WithTags(tags ...string) Opt {
	return func(r *Rule) {
		r.Tags = tags
	}
}

// Compile compiles the rule's match expression into a CEL program, if one is
// set. It is idempotent.
func (r *Rule) Compile() error {
	if r.Match == "" || r.matchProgram != nil {
		return nil
	}

	env, err := expr.CreateEnvironment()
	if err != nil {
		return fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(r.Match)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile match expression: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return fmt.Errorf("create CEL program: %w", err)
	}

	r.matchProgram = program

	return nil
}

// Matches evaluates the rule against the detected attributes. It reports
// whether the rule applies, along with the predicate that triggered the
// inclusion (for reasoning output).
//
// Always rules match unconditionally. Otherwise predicates are ORed: the
// first matching condition wins, then the CEL expression is consulted. A rule
// with no conditions and no match expression fails closed.
func (r *Rule) Matches(attrs map[string][]string) (bool, string) {
	if r.Always {
		return true, "always"
	}

	for _, c := range r.Conditions {
		if c.Matches(attrs) {
			return true, c.String()
		}
	}

	if r.Match != "" {
		if r.matchExpression(attrs) {
			return true, r.Match
		}
	}

	return false, ""
}

func (r *Rule) matchExpression(attrs map[string][]string) bool {
	if r.matchProgram == nil {
		// Compile was never called; fail closed rather than panicking at
		// recommendation time.
		return false
	}

	result, _, err := r.matchProgram.Eval(map[string]any{
		"attrs": attrs,
	})
	if err != nil {
		// If evaluation fails, consider it a non-match.
		return false
	}

	// CEL expression must return a boolean value.
	if boolVal, ok := result.Value().(bool); ok {
		return boolVal
	}

	// If the result is not a boolean, treat as non-match.
	return false
}

func (r *Rule) String() string {
	if r.Description != "" {
		return fmt.Sprintf("%s: %s", r.Name, r.Description)
	}

	return r.Name
}
