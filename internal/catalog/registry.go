package catalog

import (
	"fmt"
	"strings"
)

// Registry is an ordered, immutable list of labels for one categorical field.
// Label order defines the encoding position; the first label is the reference
// category whose one-hot column is dropped.
type Registry struct {
	name   string
	labels []string
	index  map[string]int
}

// NewRegistry builds a registry from labels in display order.
// Labels are compared case-insensitively; duplicates are rejected.
func NewRegistry(name string, labels []string) (*Registry, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("registry %s: no labels", name)
	}

	r := &Registry{
		name:   name,
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for i, label := range labels {
		key := normalize(label)
		if key == "" {
			return nil, fmt.Errorf("registry %s: empty label at position %d", name, i)
		}
		if prev, exists := r.index[key]; exists {
			return nil, fmt.Errorf("registry %s: duplicate label %q (positions %d and %d)", name, label, prev, i)
		}
		r.index[key] = i
		r.labels[i] = label
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Used for the
// package-level literal registries.
func MustRegistry(name string, labels []string) *Registry {
	r, err := NewRegistry(name, labels)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the field name the registry describes
func (r *Registry) Name() string {
	return r.name
}

// Labels returns a copy of the labels in registry order
func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Len returns the number of categories
func (r *Registry) Len() int {
	return len(r.labels)
}

// Reference returns the reference (dropped) category
func (r *Registry) Reference() string {
	return r.labels[0]
}

// Index returns the registry position of label, ignoring case and
// surrounding whitespace.
func (r *Registry) Index(label string) (int, bool) {
	i, ok := r.index[normalize(label)]
	return i, ok
}

// Contains reports whether label matches a registry entry
func (r *Registry) Contains(label string) bool {
	_, ok := r.Index(label)
	return ok
}

// Canonical returns the registry spelling of label
func (r *Registry) Canonical(label string) (string, bool) {
	i, ok := r.Index(label)
	if !ok {
		return "", false
	}
	return r.labels[i], true
}

// IsReference reports whether label is the reference category
func (r *Registry) IsReference(label string) bool {
	i, ok := r.Index(label)
	return ok && i == 0
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
