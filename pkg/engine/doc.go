// Package engine turns detected project attributes and a rule catalog into an
// ordered, deduplicated set of rule recommendations.
//
// The engine is a pure, synchronous, single-pass function over in-memory
// data: it performs no I/O, holds no state, and is deterministic for
// identical inputs.
package engine
