// internal/catalog/registry.go
package catalog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// registry is a closed set of labelled values keyed by their lowercased
// label. It is built once during package initialization and never written
// afterwards, so concurrent readers need no locking.
type registry[T any] struct {
	byKey map[string]T
	order []T
}

func newRegistry[T any](labels []string, build func(label string) T) registry[T] {
	r := registry[T]{
		byKey: make(map[string]T, len(labels)),
		order: make([]T, 0, len(labels)),
	}
	for _, label := range labels {
		key := foldLabel(label)
		if _, dup := r.byKey[key]; dup {
			panic("catalog: duplicate registry label " + label)
		}
		v := build(label)
		r.byKey[key] = v
		r.order = append(r.order, v)
	}
	return r
}

func (r registry[T]) lookup(candidate string) (T, bool) {
	v, ok := r.byKey[foldLabel(candidate)]
	return v, ok
}

func (r registry[T]) all() []T {
	out := make([]T, len(r.order))
	copy(out, r.order)
	return out
}

// foldLabel returns the lowercased form of a label. Unlike full case folding
// it keeps "ß" and "ﬁ" distinct from "ss" and "fi".
// A fresh Caser is used per call because cases.Caser is not safe for
// concurrent use.
func foldLabel(s string) string {
	return cases.Lower(language.Und).String(s)
}
