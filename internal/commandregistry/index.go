// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandregistry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/cases"
)

// ErrFoldCollision is returned when two names are equal after case folding.
var ErrFoldCollision = errors.New("case-insensitive command name collision")

// Index maps the case fold of every name to its exact key.
type Index map[string]string

// Fold returns the comparison form of a typed or stored name.
// Surrounding whitespace is ignored.
func Fold(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// BuildIndex folds every key of reg in insertion order. The first key wins a
// fold; every later key that folds the same is reported. A non-nil error means
// resolution is ambiguous and should not be trusted for writes.
func BuildIndex(reg *Registry) (Index, error) {
	idx := make(Index, reg.Len())

	var result error

	for _, key := range reg.Keys() {
		f := Fold(key)
		if first, ok := idx[f]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: '%s' and '%s'", ErrFoldCollision, first, key))
			continue
		}

		idx[f] = key
	}

	return idx, result
}

// Resolve maps a typed name to a canonical key: exact match first, then the fold index.
func Resolve(typed string, reg *Registry, idx Index) (string, bool) {
	if _, ok := reg.Get(typed); ok {
		return typed, true
	}

	if _, ok := reg.Get(strings.TrimSpace(typed)); ok {
		return strings.TrimSpace(typed), true
	}

	key, ok := idx[Fold(typed)]

	return key, ok
}

// ResolveTokens finds the longest prefix of tokens that, joined by single
// spaces, resolves to a key. The unconsumed tokens are returned as rest.
func ResolveTokens(tokens []string, reg *Registry, idx Index) (key string, rest []string, ok bool) {
	for n := len(tokens); n > 0; n-- {
		if key, ok := Resolve(strings.Join(tokens[:n], " "), reg, idx); ok {
			return key, tokens[n:], true
		}
	}

	return "", tokens, false
}

// ConflictsWith returns the existing key that name collides with case-insensitively,
// ignoring an exact match of except.
func ConflictsWith(name, except string, reg *Registry) (string, bool) {
	f := Fold(name)

	for _, key := range reg.Keys() {
		if key == except || key == name {
			continue
		}

		if Fold(key) == f {
			return key, true
		}
	}

	return "", false
}
