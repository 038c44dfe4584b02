// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import "strings"

const enterKey = "enter"

var keySequences = map[string]string{
	"tab":       "\t",
	"escape":    "\x1b",
	"esc":       "\x1b",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"home":      "\x1b[H",
	"end":       "\x1b[F",
	"backspace": "\x7f",
	"delete":    "\x1b[3~",
	"pageup":    "\x1b[5~",
	"pagedown":  "\x1b[6~",
	"space":     " ",
}

// KeySequence returns the bytes typed for a named key. Names are matched
// case-insensitively after trimming; an unknown name is typed trimmed, in its
// original case.
// newline is what the backend uses for Enter.
func KeySequence(name, newline string) string {
	raw := strings.TrimSpace(name)
	key := strings.ToLower(raw)

	if key == enterKey || key == "return" {
		return newline
	}

	if seq, ok := keySequences[key]; ok {
		return seq
	}

	if c, ok := ctrlKey(key); ok {
		return c
	}

	return raw
}

// ctrlKey maps ctrl+x and c-x to the control byte of x.
func ctrlKey(key string) (string, bool) {
	var rest string

	switch {
	case strings.HasPrefix(key, "ctrl+"):
		rest = key[len("ctrl+"):]
	case strings.HasPrefix(key, "ctrl-"):
		rest = key[len("ctrl-"):]
	case strings.HasPrefix(key, "c-"):
		rest = key[len("c-"):]
	default:
		return "", false
	}

	if len(rest) != 1 {
		return "", false
	}

	c := rest[0]

	switch {
	case c >= 'a' && c <= 'z':
		return string(rune(c - 'a' + 1)), true
	case c >= '@' && c <= '_':
		return string(rune(c - '@')), true
	}

	return "", false
}
