// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package settings resolves the immutable runtime settings of a single invocation.
//
// Settings are built once in main and passed by value to every component.
// Nothing in this module reads the environment after that point.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	// PrimaryName is the name of the tool itself. It is never generated as a wrapper.
	PrimaryName = "commands-wrapper"
	// Marker is embedded in every generated wrapper. Only files carrying it are ever rewritten or pruned.
	Marker = "commands-wrapper: generated wrapper, safe to delete"
	// GOOSWindows is the runtime.GOOS value for Windows.
	GOOSWindows = "windows"

	// EnvWrapperEntry is set to 1 by command wrappers.
	EnvWrapperEntry = "COMMANDS_WRAPPER_WRAPPER_ENTRY"
	// EnvWrapperName carries the name of the wrapper that launched the tool.
	EnvWrapperName = "COMMANDS_WRAPPER_WRAPPER_NAME"
	// EnvInternal enables hidden subcommands used by the shell hook.
	EnvInternal = "COMMANDS_WRAPPER_INTERNAL"

	commandsFileName    = "commands.yaml"
	commandsFileNameAlt = "commands.yml"
	cwdContextFileName  = "cwd-context.yaml"
)

// ToolAliases are the secondary launcher names of the tool.
var ToolAliases = []string{"cw", "command-wrapper"}

// ErrSettings is returned when the settings cannot be resolved.
var ErrSettings = errors.New("failed to resolve settings")

// environment is the set of variables read at startup.
type environment struct {
	BinDir           string `env:"COMMANDS_WRAPPER_BIN_DIR"`
	PreferLocalWrite bool   `env:"COMMANDS_WRAPPER_PREFER_LOCAL_WRITE"`
	NoPTY            bool   `env:"COMMANDS_WRAPPER_NO_PTY"`
	WrapperEntry     bool   `env:"COMMANDS_WRAPPER_WRAPPER_ENTRY"`
	WrapperName      string `env:"COMMANDS_WRAPPER_WRAPPER_NAME"`
	Internal         bool   `env:"COMMANDS_WRAPPER_INTERNAL"`
	ConfigHome       string `env:"XDG_CONFIG_HOME"`
	StateHome        string `env:"XDG_STATE_HOME"`
	LocalAppData     string `env:"LOCALAPPDATA"`
	AppData          string `env:"APPDATA"`
	SystemRoot       string `env:"SystemRoot"`
	Shell            string `env:"SHELL"`
	Path             string `env:"PATH"`
	PathExt          string `env:"PATHEXT" envDefault:".COM;.EXE;.BAT;.CMD"`
}

// Settings is the resolved configuration of one invocation.
type Settings struct {
	GOOS             string
	HomeDir          string
	WorkDir          string
	ToolPath         string // absolute, symlink-resolved path of the running binary
	BinDir           string // directory that holds the generated wrappers
	ConfigDir        string // global command directory
	StateDir         string
	PreferLocalWrite bool
	NoPTY            bool
	WrapperEntry     bool
	WrapperName      string
	Internal         bool
	PathList         []string
	PathExt          []string
	ShellArgv        []string // shell and flag that run a single command line
}

// Options are the raw inputs to New.
type Options struct {
	Environment map[string]string
	GOOS        string
	HomeDir     string
	WorkDir     string
	ToolPath    string
}

// Load resolves the settings of the running process.
func Load() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, errors.Join(ErrSettings, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return Settings{}, errors.Join(ErrSettings, err)
	}

	tool, err := os.Executable()
	if err != nil {
		return Settings{}, errors.Join(ErrSettings, err)
	}

	if resolved, err := filepath.EvalSymlinks(tool); err == nil {
		tool = resolved
	}

	return New(Options{
		Environment: env.ToMap(os.Environ()),
		GOOS:        runtime.GOOS,
		HomeDir:     home,
		WorkDir:     wd,
		ToolPath:    tool,
	})
}

// New resolves settings from opts.
func New(opts Options) (Settings, error) {
	var e environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: opts.Environment}); err != nil {
		return Settings{}, errors.Join(ErrSettings, err)
	}

	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}

	if opts.HomeDir == "" {
		return Settings{}, fmt.Errorf("%w: home directory is unknown", ErrSettings)
	}

	s := Settings{
		GOOS:             opts.GOOS,
		HomeDir:          opts.HomeDir,
		WorkDir:          opts.WorkDir,
		ToolPath:         opts.ToolPath,
		PreferLocalWrite: e.PreferLocalWrite,
		NoPTY:            e.NoPTY,
		WrapperEntry:     e.WrapperEntry,
		WrapperName:      strings.TrimSpace(e.WrapperName),
		Internal:         e.Internal,
		PathList:         splitList(e.Path, opts.GOOS),
	}

	windows := opts.GOOS == GOOSWindows

	switch {
	case e.ConfigHome != "":
		s.ConfigDir = filepath.Join(e.ConfigHome, PrimaryName)
	case windows && e.AppData != "":
		s.ConfigDir = filepath.Join(e.AppData, PrimaryName)
	default:
		s.ConfigDir = filepath.Join(opts.HomeDir, ".config", PrimaryName)
	}

	switch {
	case e.StateHome != "":
		s.StateDir = filepath.Join(e.StateHome, PrimaryName)
	case windows && e.LocalAppData != "":
		s.StateDir = filepath.Join(e.LocalAppData, PrimaryName)
	default:
		s.StateDir = filepath.Join(opts.HomeDir, ".local", "state", PrimaryName)
	}

	switch {
	case e.BinDir != "":
		s.BinDir = e.BinDir
	case windows && e.LocalAppData != "":
		s.BinDir = filepath.Join(e.LocalAppData, PrimaryName, "bin")
	case windows:
		s.BinDir = filepath.Join(opts.HomeDir, "AppData", "Local", PrimaryName, "bin")
	default:
		s.BinDir = filepath.Join(opts.HomeDir, ".local", "bin")
	}

	if windows {
		for _, ext := range strings.Split(e.PathExt, ";") {
			if ext = strings.TrimSpace(ext); ext != "" {
				s.PathExt = append(s.PathExt, strings.ToLower(ext))
			}
		}

		root := e.SystemRoot
		if root == "" {
			root = `C:\Windows`
		}

		s.ShellArgv = []string{root + `\System32\cmd.exe`, "/C"}
	} else {
		shell := e.Shell
		if shell == "" {
			shell = "/bin/sh"
		}

		s.ShellArgv = []string{shell, "-c"}
	}

	return s, nil
}

// IsWindows reports whether wrappers and lookups follow Windows rules.
func (s Settings) IsWindows() bool {
	return s.GOOS == GOOSWindows
}

// GlobalFile is the default write target.
func (s Settings) GlobalFile() string {
	return filepath.Join(s.ConfigDir, commandsFileName)
}

// LocalFiles are the candidate command files in the working directory, in merge order.
func (s Settings) LocalFiles() []string {
	return []string{
		filepath.Join(s.WorkDir, commandsFileName),
		filepath.Join(s.WorkDir, commandsFileNameAlt),
	}
}

// CwdContextFile is the side file of the cwd context relay.
func (s Settings) CwdContextFile() string {
	return filepath.Join(s.StateDir, cwdContextFileName)
}

// IsPrimaryName reports whether name case-insensitively equals the tool's own name.
func IsPrimaryName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), PrimaryName)
}

func splitList(path, goos string) []string {
	sep := ":"
	if goos == GOOSWindows {
		sep = ";"
	}

	var out []string

	for _, p := range strings.Split(path, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
