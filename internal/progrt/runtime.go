// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/progrt/runtime.go
// Summary: Runs taskbar programs in-process on a JavaScript VM.
// Usage: The taskbar calls Run when a button is activated; the shell runs the
// startup injector through RunSource. Programs are trusted code: they get no
// filesystem or network access from the VM, but the shell host API they are
// given is unrestricted.

package progrt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/framegrace/texelshell/internal/history"
	"github.com/framegrace/texelshell/registry"
)

// ErrProgramFailed wraps exceptions raised by a program.
var ErrProgramFailed = errors.New("program failed")

// Host is the shell surface exposed to programs as the global "shell".
type Host interface {
	Log(program, message string)
	OpenWindow(name string, x, y, width, height float64, class string) (int, error)
	CloseWindow(id int) error
	FocusWindow(id int) error
	SetWindowText(id int, text string) error
	GoToPage(name string) error
	FadeToPage(name string, seconds float64) error
	GoBack() error
	ActivePage() string
}

// Recorder persists launch records.
type Recorder interface {
	Record(r history.Record) (uuid.UUID, error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithHistory records every run in rec.
func WithHistory(rec Recorder) Option {
	return func(r *Runtime) { r.history = rec }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// Runtime executes program scripts. Each run gets a fresh VM.
type Runtime struct {
	host    Host
	log     *zap.Logger
	history Recorder
	now     func() time.Time
}

// New creates a runtime bound to host.
func New(host Host, log *zap.Logger, opts ...Option) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runtime{host: host, log: log, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads the manifest's script and executes it. Unreadable scripts and
// program exceptions are returned; neither is fatal to the caller.
func (r *Runtime) Run(ctx context.Context, m *registry.Manifest) error {
	start := r.now()
	source, err := os.ReadFile(m.ExecutableFile())
	if err != nil {
		err = fmt.Errorf("read program %q: %w", m.Name, err)
		r.record(m.Name, start, err)
		return err
	}
	err = r.exec(ctx, m.Name, string(source), m.ProgramData)
	r.record(m.Name, start, err)
	return err
}

// RunSource executes source under name with no program data.
func (r *Runtime) RunSource(ctx context.Context, name, source string) error {
	start := r.now()
	err := r.exec(ctx, name, source, nil)
	r.record(name, start, err)
	return err
}

func (r *Runtime) record(name string, start time.Time, runErr error) {
	if r.history == nil {
		return
	}
	rec := history.Record{
		Program:   name,
		StartedAt: start,
		Duration:  r.now().Sub(start),
	}
	if runErr != nil {
		rec.Err = runErr.Error()
	}
	if _, err := r.history.Record(rec); err != nil {
		r.log.Warn("failed to record launch", zap.String("program", name), zap.Error(err))
	}
}

func (r *Runtime) exec(ctx context.Context, name, source string, data interface{}) (err error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)
	if err := r.bind(vm, name, data); err != nil {
		return fmt.Errorf("bind host for %q: %w", name, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("shutting down")
		case <-done:
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrProgramFailed, name, p)
		}
	}()

	r.log.Debug("program started", zap.String("program", name))
	if _, runErr := vm.RunScript(name, source); runErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) && ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrProgramFailed, name, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %v", ErrProgramFailed, name, runErr)
	}
	r.log.Debug("program finished", zap.String("program", name))
	return nil
}

func (r *Runtime) bind(vm *goja.Runtime, name string, data interface{}) error {
	shell := vm.NewObject()
	h := r.host

	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		h.Log(name, strings.Join(parts, " "))
		return goja.Undefined()
	}

	bindings := map[string]func(goja.FunctionCall) goja.Value{
		"log": logFn,
		"openWindow": func(call goja.FunctionCall) goja.Value {
			id, err := h.OpenWindow(
				call.Argument(0).String(),
				call.Argument(1).ToFloat(),
				call.Argument(2).ToFloat(),
				call.Argument(3).ToFloat(),
				call.Argument(4).ToFloat(),
				optString(call.Argument(5)),
			)
			throwIf(vm, err)
			return vm.ToValue(id)
		},
		"closeWindow": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.CloseWindow(int(call.Argument(0).ToInteger())))
			return goja.Undefined()
		},
		"focusWindow": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.FocusWindow(int(call.Argument(0).ToInteger())))
			return goja.Undefined()
		},
		"setWindowText": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.SetWindowText(int(call.Argument(0).ToInteger()), call.Argument(1).String()))
			return goja.Undefined()
		},
		"goToPage": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.GoToPage(call.Argument(0).String()))
			return goja.Undefined()
		},
		"fadeToPage": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.FadeToPage(call.Argument(0).String(), call.Argument(1).ToFloat()))
			return goja.Undefined()
		},
		"goBack": func(call goja.FunctionCall) goja.Value {
			throwIf(vm, h.GoBack())
			return goja.Undefined()
		},
		"activePage": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(h.ActivePage())
		},
	}
	for key, fn := range bindings {
		if err := shell.Set(key, guard(vm, fn)); err != nil {
			return err
		}
	}
	if err := shell.Set("programName", name); err != nil {
		return err
	}
	if err := shell.Set("programData", vm.ToValue(data)); err != nil {
		return err
	}
	if err := vm.Set("shell", shell); err != nil {
		return err
	}

	console := vm.NewObject()
	if err := console.Set("log", guard(vm, logFn)); err != nil {
		return err
	}
	return vm.Set("console", console)
}

func optString(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// throwIf raises err as a script exception.
func throwIf(vm *goja.Runtime, err error) {
	if err != nil {
		panic(vm.NewGoError(err))
	}
}

// guard turns Go panics inside a binding into script exceptions.
func guard(vm *goja.Runtime, fn func(goja.FunctionCall) goja.Value) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) (result goja.Value) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if v, ok := p.(goja.Value); ok {
				panic(v)
			}
			panic(vm.NewGoError(fmt.Errorf("host panic: %v", p)))
		}()
		return fn(call)
	}
}
