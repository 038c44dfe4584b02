// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandstore"
	"github.com/matt-FFFFFF/commands-wrapper/internal/console"
	"github.com/matt-FFFFFF/commands-wrapper/internal/cwdrelay"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/stepexec"
	"github.com/matt-FFFFFF/commands-wrapper/internal/tui"
	"github.com/matt-FFFFFF/commands-wrapper/internal/wrappers"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrReported is returned once the failure has already been shown to the user.
var ErrReported = errors.New("operation failed")

// Runner executes one record with dir as its working directory.
type Runner interface {
	Run(ctx context.Context, rec commands.Record, dir string) (int, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, rec commands.Record, dir string) (int, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, rec commands.Record, dir string) (int, error) {
	return f(ctx, rec, dir)
}

// Picker lets the user choose one of items.
type Picker func(ctx context.Context, items []tui.Item) (string, bool, error)

// App wires the store, the wrapper synchronizer and the executor together for
// one invocation.
type App struct {
	fs       afero.Fs
	settings settings.Settings
	console  *console.Console
	store    *commandstore.Store
	syncer   *wrappers.Syncer
	relay    *cwdrelay.Relay
	runner   Runner
	picker   Picker

	interactive func() bool
	chdir       func(string) error
	getenv      func(string) string
	ppid        int
	workDir     string
	viaWrapper  bool

	sess *session
}

// Option configures an App.
type Option func(*App)

// WithConsole replaces the output streams.
func WithConsole(c *console.Console) Option {
	return func(a *App) {
		a.console = c
	}
}

// WithRunner replaces the executor.
func WithRunner(r Runner) Option {
	return func(a *App) {
		a.runner = r
	}
}

// WithPicker replaces the interactive picker.
func WithPicker(p Picker) Option {
	return func(a *App) {
		a.picker = p
	}
}

// WithInteractive replaces the terminal check that enables the picker.
func WithInteractive(f func() bool) Option {
	return func(a *App) {
		a.interactive = f
	}
}

// WithChdir replaces the function that changes the working directory.
func WithChdir(f func(string) error) Option {
	return func(a *App) {
		a.chdir = f
	}
}

// WithGetenv replaces the environment lookup used to expand cd targets.
func WithGetenv(f func(string) string) Option {
	return func(a *App) {
		a.getenv = f
	}
}

// WithParentPID sets the key of the cwd relay.
func WithParentPID(pid int) Option {
	return func(a *App) {
		a.ppid = pid
	}
}

// New creates an App working on fs with settings s.
func New(fs afero.Fs, s settings.Settings, opts ...Option) *App {
	syncer := wrappers.NewSyncer(fs, s)

	a := &App{
		fs:          fs,
		settings:    s,
		console:     console.Default(),
		store:       commandstore.New(fs, s, syncer),
		syncer:      syncer,
		relay:       cwdrelay.New(fs, s),
		runner:      stepRunner(s),
		picker:      pick,
		interactive: stdioIsTerminal,
		chdir:       os.Chdir,
		getenv:      os.Getenv,
		ppid:        os.Getppid(),
		workDir:     s.WorkDir,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Settings returns the settings of the invocation.
func (a *App) Settings() settings.Settings {
	return a.settings
}

// Console returns the output streams.
func (a *App) Console() *console.Console {
	return a.console
}

type contextKey struct{}

// NewContext returns a context carrying a.
func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the App stored by NewContext, or nil.
func FromContext(ctx context.Context) *App {
	a, _ := ctx.Value(contextKey{}).(*App)
	return a
}

// Exit turns an error returned by an App operation into a CLI exit error.
func Exit(err error) error {
	if err == nil {
		return nil
	}

	return cli.Exit("", 1)
}

// session is the registry loaded for this invocation.
type session struct {
	reg      *commandregistry.Registry
	idx      commandregistry.Index
	idxErr   error
	warnings error
	reported bool
}

// load reads the registry once per invocation without printing anything.
func (a *App) load(ctx context.Context) *session {
	if a.sess != nil {
		return a.sess
	}

	reg, warnings := a.store.Load(ctx)
	idx, idxErr := commandregistry.BuildIndex(reg)

	a.sess = &session{reg: reg, idx: idx, idxErr: idxErr, warnings: warnings}

	return a.sess
}

// loadAndReport is load followed by the load warnings, printed once.
func (a *App) loadAndReport(ctx context.Context) *session {
	sess := a.load(ctx)
	if sess.reported {
		return sess
	}

	sess.reported = true

	for _, w := range commandstore.Warnings(sess.warnings) {
		a.console.Warn(w.Error())
	}

	for _, e := range commandstore.Warnings(sess.idxErr) {
		a.console.Warn(e.Error())
	}

	return sess
}

func stepRunner(s settings.Settings) RunnerFunc {
	return func(ctx context.Context, rec commands.Record, dir string) (int, error) {
		return stepexec.New(s, stepexec.WithDir(dir)).Run(ctx, rec)
	}
}

func pick(ctx context.Context, items []tui.Item) (string, bool, error) {
	return tui.Pick(ctx, items)
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
