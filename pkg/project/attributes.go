package project

import "slices"

// Feature is one detected project characteristic, with human-readable
// evidence for display.
type Feature struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Attributes is an ordered collection of detected [Feature]s, keyed by
// attribute name with one or more string values each. It is built once per
// analysis and treated as immutable afterwards.
type Attributes struct {
	features []Feature
}

// NewAttributes creates an [Attributes] from the given features, dropping
// duplicate (key, value) pairs while preserving first-seen order.
func NewAttributes(features ...Feature) *Attributes {
	a := &Attributes{}
	for _, f := range features {
		a.add(f)
	}

	return a
}

func (a *Attributes) add(f Feature) {
	for _, existing := range a.features {
		if existing.Key == f.Key && existing.Value == f.Value {
			return
		}
	}

	a.features = append(a.features, f)
}

// Features returns the detected features in detection order.
func (a *Attributes) Features() []Feature {
	return slices.Clone(a.features)
}

// Values returns all values recorded for the attribute key, in order.
func (a *Attributes) Values(key string) []string {
	var values []string

	for _, f := range a.features {
		if f.Key == key {
			values = append(values, f.Value)
		}
	}

	return values
}

// Has reports whether the attribute key contains the given value.
func (a *Attributes) Has(key, value string) bool {
	return slices.Contains(a.Values(key), value)
}

// Flag reports whether the boolean flag attribute is set to "true".
func (a *Attributes) Flag(key string) bool {
	return a.Has(key, "true")
}

// Len returns the number of detected features.
func (a *Attributes) Len() int {
	return len(a.features)
}

// Map returns a fresh attribute-name to value-list mapping, suitable for rule
// evaluation. Mutating the result does not affect the receiver.
func (a *Attributes) Map() map[string][]string {
	m := make(map[string][]string)

	for _, f := range a.features {
		m[f.Key] = append(m[f.Key], f.Value)
	}

	return m
}
