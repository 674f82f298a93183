package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/epodak/grule/pkg/log"
	"github.com/epodak/grule/pkg/rule"
)

// ErrNoRules is returned when the catalog is empty or unusable and no
// fallback defaults are available. An empty recommendation must be explicit,
// never a silent nil.
var ErrNoRules = errors.New("no rules to recommend: catalog is empty and no defaults are available")

// DefaultRuleNames is the hardcoded fallback set of universal rule
// identifiers, used when the catalog is empty or unavailable.
var DefaultRuleNames = []string{
	"implement-task",
	"bug-fix",
	"quick-wins",
}

// Recommendation pairs a rule identifier with the reasoning that triggered
// its inclusion.
type Recommendation struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Weight   int    `json:"weight"`
}

// Result is an ordered, deduplicated recommendation set. Always rules sort
// first, then by descending weight; ties preserve first-seen catalog order.
type Result struct {
	Recommendations []Recommendation
}

// Names returns the recommended rule identifiers in display order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		names = append(names, rec.Name)
	}

	return names
}

// Recommend evaluates the catalog against the detected attributes.
//
// Every rule flagged always is included unconditionally. Any other rule is
// included when one of its predicates matches (logical OR). Each identifier
// appears at most once; when several catalog entries share an identifier, the
// highest-weight occurrence's reason wins. A missing attribute key is never
// an error. An empty catalog falls back to [DefaultRuleNames], with a logged
// warning.
func Recommend(ctx context.Context, attrs map[string][]string, catalog []*rule.Rule) (*Result, error) {
	logger := log.WithContext(ctx)

	if len(catalog) == 0 {
		return fallback(logger)
	}

	var (
		always      []Recommendation
		conditional []Recommendation
	)

	alwaysNames := make(map[string]bool)

	for _, r := range catalog {
		if r == nil || r.Name == "" {
			continue
		}

		matched, reason := r.Matches(attrs)
		if !matched {
			continue
		}

		rec := Recommendation{
			Name:     r.Name,
			Category: r.Category,
			Weight:   r.Weight,
			Reason:   reason,
		}
		if r.Description != "" {
			rec.Reason = r.Description
		}

		if r.Always {
			alwaysNames[r.Name] = true

			always = append(always, rec)
		} else {
			conditional = append(conditional, rec)
		}
	}

	recs := dedupe(append(always, conditional...))

	// Stable sort: always rules first, then by descending weight. Ties keep
	// first-seen catalog order.
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		if alwaysNames[a.Name] != alwaysNames[b.Name] {
			if alwaysNames[a.Name] {
				return -1
			}

			return 1
		}

		return b.Weight - a.Weight
	})

	logger.Debug("recommendation complete",
		slog.Int("catalog", len(catalog)),
		slog.Int("recommended", len(recs)),
	)

	return &Result{Recommendations: recs}, nil
}

// dedupe removes duplicate identifiers, preserving first-seen order while
// keeping the highest weight (and its reason) for each identifier.
func dedupe(recs []Recommendation) []Recommendation {
	index := make(map[string]int, len(recs))
	out := make([]Recommendation, 0, len(recs))

	for _, rec := range recs {
		i, seen := index[rec.Name]
		if !seen {
			index[rec.Name] = len(out)
			out = append(out, rec)

			continue
		}

		if rec.Weight > out[i].Weight {
			out[i].Weight = rec.Weight
			out[i].Reason = rec.Reason
			out[i].Category = rec.Category
		}
	}

	return out
}

func fallback(logger *slog.Logger) (*Result, error) {
	if len(DefaultRuleNames) == 0 {
		return nil, ErrNoRules
	}

	logger.Warn("rule catalog is empty, falling back to default rules",
		slog.Any("rules", DefaultRuleNames),
	)

	recs := make([]Recommendation, 0, len(DefaultRuleNames))
	for _, name := range DefaultRuleNames {
		recs = append(recs, Recommendation{
			Name:     name,
			Category: "core",
			Reason:   "default fallback rule",
		})
	}

	return &Result{Recommendations: recs}, nil
}
