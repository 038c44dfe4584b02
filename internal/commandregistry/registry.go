// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandregistry

import (
	"sort"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
)

// Registry maps exact command names to records and remembers the order in which
// names were first added.
type Registry struct {
	records map[string]commands.Record
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]commands.Record)}
}

// Set adds or replaces the record stored under name. A replaced name keeps its position.
func (r *Registry) Set(name string, rec commands.Record) {
	if _, exists := r.records[name]; !exists {
		r.order = append(r.order, name)
	}

	rec.Name = name
	r.records[name] = rec
}

// Get returns the record stored under the exact name.
func (r *Registry) Get(name string) (commands.Record, bool) {
	if r == nil {
		return commands.Record{}, false
	}

	rec, ok := r.records[name]

	return rec, ok
}

// Delete removes name from the registry.
func (r *Registry) Delete(name string) {
	if _, ok := r.records[name]; !ok {
		return
	}

	delete(r.records, name)

	for i, k := range r.order {
		if k == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.order)
}

// Keys returns the names in insertion order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}

	return append([]string(nil), r.order...)
}

// Sorted returns the names ordered case-insensitively, with a byte-order tiebreak.
func (r *Registry) Sorted() []string {
	keys := r.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		fi, fj := Fold(keys[i]), Fold(keys[j])
		if fi != fj {
			return fi < fj
		}

		return keys[i] < keys[j]
	})

	return keys
}

// Clone returns a shallow copy. Records are values, so the copy is independent.
func (r *Registry) Clone() *Registry {
	c := New()
	for _, k := range r.Keys() {
		c.Set(k, r.records[k])
	}

	return c
}
