// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package wrappers

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/diag"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
)

// ConflictText is part of every PATH conflict warning.
const ConflictText = "already used by another executable on PATH"

// Kind says what a wrapper launches.
type Kind int

// Wrapper kinds.
const (
	// KindCommand runs one command.
	KindCommand Kind = iota
	// KindNamespace passes its arguments on as the remaining words of a multi-word command.
	KindNamespace
	// KindTool is a secondary launcher of the tool itself.
	KindTool
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindTool:
		return "tool"
	default:
		return "command"
	}
}

// Entry is one wrapper executable.
type Entry struct {
	Name   string // file name without extension
	Target string // command name, or first word for a namespace launcher
	Kind   Kind
}

// Map is the wrapper set, keyed by wrapper name.
type Map map[string]Entry

// Names returns the wrapper names in byte order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// BlockReason says why a derived wrapper was not created.
type BlockReason int

// Block reasons.
const (
	BlockedCollision BlockReason = iota
	BlockedReserved
	BlockedInvalidName
	BlockedOnPath
	BlockedForeignFile
)

// Block is a derived wrapper that was withheld.
type Block struct {
	Entry
	Reason    BlockReason
	Claimants []string // every command deriving the name
}

// Blocked maps a wrapper name to the reason it was withheld.
type Blocked map[string]Block

// ForCommand returns the blocks that concern the wrappers of command, sorted by wrapper name.
// Namespace launchers are left out.
func (b Blocked) ForCommand(command string) []Block {
	var out []Block

	for _, blk := range b {
		if blk.Kind != KindCommand {
			continue
		}

		for _, c := range blk.Claimants {
			if c == command {
				out = append(out, blk)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// OnDisk reports whether the wrapper was withheld because something outside
// the tool already holds its name.
func (b Block) OnDisk() bool {
	return b.Reason == BlockedOnPath || b.Reason == BlockedForeignFile
}

// Message describes an OnDisk block for the user.
func (b Block) Message() string {
	if b.Reason == BlockedForeignFile {
		return fmt.Sprintf("skipped wrapper '%s': a file not generated by %s already exists", b.Name, settings.PrimaryName)
	}

	return conflictMessage(b.Entry)
}

// CanonicalName derives the primary wrapper name of a command: its words joined
// by hyphens and case folded the way the resolver folds typed names. The tool's
// own name is never derived.
func CanonicalName(command string) (string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", false
	}

	name := commandregistry.Fold(strings.Join(fields, "-"))
	if settings.IsPrimaryName(name) {
		return "", false
	}

	return name, true
}

// CaseAlias derives the case-preserving alias of a command that contains upper case.
func CaseAlias(command string) (string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", false
	}

	alias := strings.Join(fields, "-")
	if !hasUpper(alias) || settings.IsPrimaryName(alias) {
		return "", false
	}

	return alias, true
}

// Derive computes the wrapper set of reg without looking at PATH. Case aliases
// are only derived when the filesystem is case sensitive.
func Derive(reg *commandregistry.Registry, windows bool) (Map, diag.Diagnostics, Blocked) {
	var (
		claims = make(map[string][]string)
		msgs   diag.Diagnostics
		out    = make(Map)
		block  = make(Blocked)
	)

	claim := func(name, command string) {
		for _, c := range claims[name] {
			if c == command {
				return
			}
		}

		claims[name] = append(claims[name], command)
	}

	keys := reg.Sorted()

	for _, key := range keys {
		if n, ok := CanonicalName(key); ok {
			claim(n, key)
		}

		if windows {
			continue
		}

		if a, ok := CaseAlias(key); ok {
			claim(a, key)
		}
	}

	tools := make(map[string]bool, len(settings.ToolAliases))
	for _, a := range settings.ToolAliases {
		tools[a] = true
	}

	names := make([]string, 0, len(claims))
	for n := range claims {
		names = append(names, n)
	}

	sort.Strings(names)

	for _, name := range names {
		cmds := claims[name]
		e := Entry{Name: name, Target: cmds[0], Kind: KindCommand}

		switch {
		case len(cmds) > 1:
			msgs = append(msgs, diag.NewError(fmt.Sprintf(
				"wrapper name collision for '%s': %s", name, quoteJoin(cmds, " vs "))))
			block[name] = Block{Entry: e, Reason: BlockedCollision, Claimants: cmds}
		case tools[name]:
			msgs = append(msgs, diag.NewError(fmt.Sprintf(
				"wrapper name '%s' of '%s' is reserved for %s", name, cmds[0], settings.PrimaryName)))
			block[name] = Block{Entry: e, Reason: BlockedReserved, Claimants: cmds}
		case !validFileName(name, windows):
			msgs = append(msgs, diag.NewError(fmt.Sprintf(
				"invalid wrapper name '%s' for command '%s'", name, cmds[0])))
			block[name] = Block{Entry: e, Reason: BlockedInvalidName, Claimants: cmds}
		default:
			out[name] = e
		}
	}

	for _, key := range keys {
		fields := strings.Fields(key)
		if len(fields) < 2 {
			continue
		}

		ns := commandregistry.Fold(fields[0])

		if _, taken := claims[ns]; taken {
			continue
		}

		if _, done := out[ns]; done || tools[ns] || settings.IsPrimaryName(ns) || !validFileName(ns, windows) {
			continue
		}

		out[ns] = Entry{Name: ns, Target: fields[0], Kind: KindNamespace}
	}

	for _, a := range settings.ToolAliases {
		if _, taken := claims[a]; taken {
			continue
		}

		out[a] = Entry{Name: a, Kind: KindTool}
	}

	return out, msgs, block
}

var windowsReserved = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

func validFileName(name string, windows bool) bool {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return false
	}

	if !windows {
		return true
	}

	if strings.ContainsAny(name, `<>:"\|?*%`) || strings.HasSuffix(name, ".") {
		return false
	}

	for _, r := range name {
		if r < 0x20 {
			return false
		}
	}

	return !windowsReserved[commandregistry.Fold(name)]
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func quoteJoin(items []string, sep string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}

	return strings.Join(quoted, sep)
}
