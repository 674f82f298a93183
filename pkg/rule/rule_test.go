package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epodak/grule/pkg/rule"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ruleName string
		opts     []rule.Opt
		wantErr  bool
	}{
		{
			name:     "valid rule with conditions",
			ruleName: "pr-review",
			opts: []rule.Opt{
				rule.WithConditions(rule.Condition{
					Attribute: "team_size",
					AnyOf:     []string{"medium", "large"},
				}),
				rule.WithWeight(8),
			},
			wantErr: false,
		},
		{
			name:     "valid rule with match expression",
			ruleName: "modern-swift",
			opts: []rule.Opt{
				rule.WithMatch(`attrHas(attrs, "languages", "swift")`),
			},
			wantErr: false,
		},
		{
			name:     "invalid CEL expression",
			ruleName: "broken",
			opts: []rule.Opt{
				rule.WithMatch("attrs.invalidFunction()"),
			},
			wantErr: true,
		},
		{
			name:     "empty name",
			ruleName: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := rule.New(tt.ruleName, tt.opts...)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, r)
			} else {
				require.NoError(t, err)
				require.NotNil(t, r)
				assert.Equal(t, tt.ruleName, r.Name)
			}
		})
	}
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	t.Run("valid rule", func(t *testing.T) {
		t.Parallel()

		r := rule.MustNew("quick-wins",
			rule.WithAlways(),
			rule.WithWeight(8),
			rule.WithCategory("productivity"),
		)
		require.NotNil(t, r)
		assert.True(t, r.Always)
		assert.Equal(t, 8, r.Weight)
		assert.Equal(t, "productivity", r.Category)
	})

	t.Run("invalid rule panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			rule.MustNew("broken", rule.WithMatch("attrs.invalidFunction()"))
		})
	})
}

func TestRule_Compile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		match   string
		wantErr bool
	}{
		{
			name:    "valid expression",
			match:   `attrFlag(attrs, "has_testing")`,
			wantErr: false,
		},
		{
			name:    "complex expression",
			match:   `attrAny(attrs, "project_size", ["medium", "large"]) && !attrHas(attrs, "team_size", "solo")`,
			wantErr: false,
		},
		{
			name:    "empty expression is a no-op",
			match:   "",
			wantErr: false,
		},
		{
			name:    "invalid expression",
			match:   "attrs.invalidFunction()",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &rule.Rule{
				Name:  "test",
				Match: tt.match,
			}

			err := r.Compile()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "compile match expression")
			} else {
				require.NoError(t, err)
				// Compiling again should not cause an error.
				require.NoError(t, r.Compile())
			}
		})
	}
}

func TestCondition_Matches(t *testing.T) {
	t.Parallel()

	attrs := map[string][]string{
		"languages":    {"python", "javascript"},
		"project_size": {"medium"},
		"has_testing":  {"true"},
		"has_docker":   {"false"},
	}

	tests := []struct {
		name      string
		condition rule.Condition
		want      bool
	}{
		{
			name: "attribute value present",
			condition: rule.Condition{
				Attribute: "languages",
				AnyOf:     []string{"swift", "python"},
			},
			want: true,
		},
		{
			name: "attribute value absent",
			condition: rule.Condition{
				Attribute: "languages",
				AnyOf:     []string{"rust"},
			},
			want: false,
		},
		{
			name: "missing attribute key",
			condition: rule.Condition{
				Attribute: "frameworks",
				AnyOf:     []string{"react"},
			},
			want: false,
		},
		{
			name: "flag set",
			condition: rule.Condition{
				Flag: "has_testing",
			},
			want: true,
		},
		{
			name: "flag unset",
			condition: rule.Condition{
				Flag: "has_docker",
			},
			want: false,
		},
		{
			name: "flag negated",
			condition: rule.Condition{
				Flag:   "has_docker",
				Equals: boolPtr(false),
			},
			want: true,
		},
		{
			name: "missing flag key with negation",
			condition: rule.Condition{
				Flag:   "has_cicd",
				Equals: boolPtr(false),
			},
			want: true,
		},
		{
			name:      "empty condition fails closed",
			condition: rule.Condition{},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.condition.Matches(attrs))
		})
	}
}

func TestCondition_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "languages in [swift]", rule.Condition{
		Attribute: "languages",
		AnyOf:     []string{"swift"},
	}.String())
	assert.Equal(t, "has_git == true", rule.Condition{
		Flag: "has_git",
	}.String())
	assert.Equal(t, "has_docker == false", rule.Condition{
		Flag:   "has_docker",
		Equals: boolPtr(false),
	}.String())
}

func TestRule_Matches(t *testing.T) {
	t.Parallel()

	attrs := map[string][]string{
		"languages":    {"swift"},
		"project_size": {"large"},
		"has_git":      {"true"},
	}

	tests := []struct {
		name       string
		rule       *rule.Rule
		attrs      map[string][]string
		wantMatch  bool
		wantReason string
	}{
		{
			name:       "always rule",
			rule:       rule.MustNew("implement-task", rule.WithAlways()),
			attrs:      map[string][]string{},
			wantMatch:  true,
			wantReason: "always",
		},
		{
			name: "condition match reports the predicate",
			rule: rule.MustNew("pr-review", rule.WithConditions(rule.Condition{
				Attribute: "project_size",
				AnyOf:     []string{"large"},
			})),
			attrs:      attrs,
			wantMatch:  true,
			wantReason: "project_size in [large]",
		},
		{
			name: "first matching condition wins",
			rule: rule.MustNew("commit", rule.WithConditions(
				rule.Condition{Attribute: "project_size", AnyOf: []string{"small"}},
				rule.Condition{Flag: "has_git"},
			)),
			attrs:      attrs,
			wantMatch:  true,
			wantReason: "has_git == true",
		},
		{
			name: "match expression",
			rule: rule.MustNew("modern-swift",
				rule.WithMatch(`attrHas(attrs, "languages", "swift")`),
			),
			attrs:      attrs,
			wantMatch:  true,
			wantReason: `attrHas(attrs, "languages", "swift")`,
		},
		{
			name: "no predicate matches",
			rule: rule.MustNew("clean", rule.WithConditions(rule.Condition{
				Attribute: "project_size",
				AnyOf:     []string{"small"},
			})),
			attrs:     attrs,
			wantMatch: false,
		},
		{
			name:      "rule with no predicates fails closed",
			rule:      rule.MustNew("inert"),
			attrs:     attrs,
			wantMatch: false,
		},
		{
			name: "empty attributes",
			rule: rule.MustNew("modern-swift",
				rule.WithMatch(`attrHas(attrs, "languages", "swift")`),
			),
			attrs:     map[string][]string{},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotMatch, gotReason := tt.rule.Matches(tt.attrs)
			assert.Equal(t, tt.wantMatch, gotMatch)
			if tt.wantMatch {
				assert.Equal(t, tt.wantReason, gotReason)
			}
		})
	}
}

func TestRule_Matches_Uncompiled(t *testing.T) {
	t.Parallel()

	// A match expression that was never compiled fails closed instead of
	// panicking.
	r := &rule.Rule{
		Name:  "uncompiled",
		Match: `attrFlag(attrs, "has_git")`,
	}

	gotMatch, _ := r.Matches(map[string][]string{"has_git": {"true"}})
	assert.False(t, gotMatch)
}
