// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/desktop/shell.go
// Summary: The shell: owns every manager and drives the lock, login and home
// pages.
// Usage: cmd/texelshell builds a Shell with New and calls Run; tests drive it
// frame by frame with Step.

package desktop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/ncruces/go-strftime"
	"go.uber.org/zap"

	"github.com/framegrace/texelshell/apps/taskbar"
	"github.com/framegrace/texelshell/auth"
	"github.com/framegrace/texelshell/config"
	"github.com/framegrace/texelshell/internal/history"
	"github.com/framegrace/texelshell/internal/progrt"
	"github.com/framegrace/texelshell/registry"
	"github.com/framegrace/texelshell/texel"
)

// Page names.
const (
	PageLock  = "lockScreen"
	PageLogin = "login"
	PageHome  = "home"
)

const (
	unlockFade = 150 * time.Millisecond
	loginFade  = 350 * time.Millisecond
	lockFade   = 150 * time.Millisecond
)

// Options configures a Shell.
type Options struct {
	Paths config.Paths
	// FrameRate overrides the preferences when positive.
	FrameRate int
	// Screen is optional; without one nothing is drawn and input only arrives
	// through HandleKey and node callbacks.
	Screen texel.ScreenDriver
	// Debounce delays catalog rescans after program directory changes.
	Debounce time.Duration
	Log      *zap.Logger
	// Now replaces time.Now for the scheduler epoch.
	Now func() time.Time
}

// Shell is the desktop. It is single-threaded: everything runs on the frame
// loop, and other goroutines reach it through Post.
type Shell struct {
	opts Options
	log  *zap.Logger

	prefs   *config.Store
	doc     config.Config
	auth    *auth.Authenticator
	history *history.Store
	watcher *registry.Watcher

	scene      *texel.Scene
	sched      *texel.Scheduler
	anim       *texel.Animator
	hits       *texel.HitTestRegistry
	windows    *texel.WindowStack
	pages      *texel.PageStack
	frame      *texel.FrameDriver
	compositor *texel.Compositor
	runtime    *progrt.Runtime
	taskbar    *taskbar.Taskbar

	ctx    context.Context
	cancel context.CancelFunc

	lock, login, home    *texel.Page
	timeLabel, dateLabel *texel.Node
	username, password   *Entry

	clockFormat string
	dateFormat  string
	lastClock   time.Time // second last shown

	closeOnce sync.Once
	closeErr  error
}

// New loads preferences and history and builds every page. Missing or broken
// preferences, history and watcher are logged and tolerated.
func New(opts Options) (*Shell, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Debounce <= 0 {
		opts.Debounce = registry.DefaultDebounce
	}
	if opts.Paths.Preferences == "" {
		return nil, fmt.Errorf("preferences path is required")
	}

	s := &Shell{opts: opts, log: opts.Log}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.prefs = config.NewStore(opts.Paths.Preferences, s.log.Named("config"))
	doc, err := s.prefs.Load()
	if err != nil {
		s.log.Warn("preferences reset to defaults", zap.Error(err))
	}
	s.doc = doc
	s.auth = auth.FromConfig(s.doc)
	s.clockFormat = s.doc.GetString(config.SectionDisplay, config.KeyClockFormat, config.DefaultClockFormat)
	s.dateFormat = s.doc.GetString(config.SectionDisplay, config.KeyDateFormat, config.DefaultDateFormat)

	if opts.Paths.History != "" {
		store, err := history.Open(opts.Paths.History)
		if err != nil {
			s.log.Warn("launch history disabled", zap.String("path", opts.Paths.History), zap.Error(err))
		} else {
			s.history = store
		}
	}

	fps := opts.FrameRate
	if fps <= 0 {
		fps = s.doc.GetInt(config.SectionDisplay, config.KeyFrameRate, config.DefaultFrameRate)
	}

	s.scene = texel.NewScene()
	s.sched = texel.NewScheduler(opts.Now())
	s.anim = texel.NewAnimator()
	easing := s.doc.GetString(config.SectionDisplay, config.KeyFadeEasing, config.DefaultFadeEasing)
	if ease, ok := texel.EasingByName(easing); ok {
		s.anim.SetEasing(ease)
	} else {
		s.log.Warn("unknown fade easing, using linear", zap.String("easing", easing))
	}
	s.hits = texel.NewHitTestRegistry(s.log.Named("hittest"))
	s.windows = texel.NewWindowStack(s.scene.Windows, s.log.Named("windows"))
	s.pages = texel.NewPageStack(s.scene, s.sched, s.anim, s.log.Named("pagestack"))
	s.frame = texel.NewFrameDriver(s.sched, s.anim, s.hits, fps, s.log.Named("frame"))

	if opts.Screen != nil {
		s.compositor = texel.NewCompositor(opts.Screen, s.scene, s.windows, s.log.Named("compositor"))
		s.compositor.SetKeyHandler(s.HandleKey)
		s.frame.SetInput(s.compositor)
		s.frame.SetRenderer(s.compositor)
	}

	var rtOpts []progrt.Option
	if s.history != nil {
		rtOpts = append(rtOpts, progrt.WithHistory(s.history))
	}
	s.runtime = progrt.New(s, s.log.Named("progrt"), rtOpts...)

	tbCfg := taskbar.Config{
		ProgramsDir: opts.Paths.Programs,
		Hits:        s.hits,
		Windows:     s.windows,
		Runner:      s.runtime,
		Context:     s.ctx,
		Log:         s.log.Named("taskbar"),
	}
	if s.history != nil {
		tbCfg.History = s.history
	}
	s.taskbar = taskbar.New(tbCfg)

	if err := s.buildPages(); err != nil {
		s.cancel()
		_ = s.closeResources()
		return nil, err
	}

	s.frame.AddTask(func(_ time.Time, p texel.Pointer) { s.windows.Update(p) })
	s.frame.AddTask(s.tickClock)

	if opts.Paths.Programs != "" {
		w, err := registry.NewWatcher(opts.Paths.Programs, opts.Debounce, func() {
			s.frame.Post(s.rescan)
		}, s.log.Named("catalog"))
		if err != nil {
			s.log.Warn("program watcher disabled", zap.String("dir", opts.Paths.Programs), zap.Error(err))
		} else {
			s.watcher = w
		}
	}
	return s, nil
}

// Start runs the startup injector from the preferences. Failures are logged.
func (s *Shell) Start() {
	source := s.doc.GetString(config.SectionStartup, config.KeyInjector, "")
	if strings.TrimSpace(source) == "" {
		return
	}
	if err := s.runtime.RunSource(s.ctx, "startup", source); err != nil {
		s.log.Error("startup injector failed", zap.Error(err))
	}
}

// Run prepares the screen, runs the startup injector and drives frames until
// ctx is done or Quit is called. The shell is closed on return.
func (s *Shell) Run(ctx context.Context) error {
	if screen := s.opts.Screen; screen != nil {
		screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
		screen.HideCursor()
		screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseMotionEvents)
		screen.EnableFocus()
		screen.Clear()
		s.frame.PollInput(screen)
	}
	s.Start()

	err := s.frame.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Step advances the shell by one frame at now.
func (s *Shell) Step(now time.Time) { s.frame.Step(now) }

// Quit ends Run.
func (s *Shell) Quit() {
	s.log.Info("quit requested")
	s.frame.Stop()
}

// Close cancels running programs, saves the preferences and releases history
// and the watcher. Only the first call does anything.
func (s *Shell) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		var errs []error
		if err := s.prefs.Save(); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, s.closeResources())
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Shell) closeResources() error {
	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watcher: %w", err))
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	return errors.Join(errs...)
}

// rescan rebuilds the taskbar after the programs directory changed.
func (s *Shell) rescan() {
	if s.taskbar.Page() == nil {
		return
	}
	if err := s.taskbar.Reload(); err != nil {
		s.log.Warn("program rescan failed", zap.Error(err))
	}
}

// FormatClock renders t with a strftime layout, dropping one leading zero so
// "09:05:01" reads "9:05:01".
func FormatClock(layout string, t time.Time) string {
	return strings.TrimPrefix(strftime.Format(layout, t), "0")
}

func (s *Shell) tickClock(now time.Time, _ texel.Pointer) {
	sec := now.Truncate(time.Second)
	if sec.Equal(s.lastClock) {
		return
	}
	s.lastClock = sec
	s.timeLabel.Visual.Text = FormatClock(s.clockFormat, now)
	s.dateLabel.Visual.Text = strftime.Format(s.dateFormat, now)
}

// Unlock leaves the lock screen for the login page.
func (s *Shell) Unlock() {
	if s.pages.Active() != PageLock {
		return
	}
	if err := s.pages.FadeTo(PageLogin, unlockFade); err != nil {
		s.log.Warn("unlock failed", zap.Error(err))
		return
	}
	s.focusEntry(s.username)
}

// Lock fades back to the lock screen and forgets the typed password.
func (s *Shell) Lock() {
	if s.pages.Active() == PageLock {
		return
	}
	s.password.Clear()
	s.blurEntries()
	if err := s.pages.FadeTo(PageLock, lockFade); err != nil {
		s.log.Warn("lock failed", zap.Error(err))
	}
}

// Login checks the typed credentials. On success it fades to the home page
// and loads the taskbar; any other verdict leaves the shell unchanged.
func (s *Shell) Login() auth.Verdict {
	user := s.username.Text()
	verdict := s.auth.Verify(user, s.password.Text())
	if verdict != auth.Pass {
		s.log.Info("login rejected", zap.String("user", user), zap.Stringer("verdict", verdict))
		return verdict
	}

	s.log.Info("login accepted", zap.String("user", user))
	s.password.Clear()
	s.blurEntries()
	if err := s.pages.FadeTo(PageHome, loginFade); err != nil {
		s.log.Warn("fade to home failed", zap.Error(err))
	}
	if err := s.taskbar.Load(s.home); err != nil {
		s.log.Warn("taskbar load failed", zap.Error(err))
	}
	return verdict
}

func (s *Shell) focusEntry(e *Entry) {
	for _, other := range []*Entry{s.username, s.password} {
		if other != e {
			other.Blur()
		}
	}
	e.Focus()
}

func (s *Shell) blurEntries() {
	s.username.Blur()
	s.password.Blur()
}

func (s *Shell) focusedEntry() *Entry {
	switch {
	case s.username.Focused():
		return s.username
	case s.password.Focused():
		return s.password
	}
	return nil
}

// HandleKey routes a key press according to the active page.
func (s *Shell) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlQ {
		s.Quit()
		return true
	}
	switch s.pages.Active() {
	case PageLock:
		// Unlock focuses the username entry before the fade commits. Esc
		// stays out: going back from here could reach the home page.
		if s.focusedEntry() != nil {
			if ev.Key() == tcell.KeyEscape {
				return true
			}
			return s.loginKey(ev)
		}
		s.Unlock()
		return true
	case PageLogin:
		return s.loginKey(ev)
	case PageHome:
		return s.homeKey(ev)
	}
	return false
}

func (s *Shell) loginKey(ev *tcell.EventKey) bool {
	focused := s.focusedEntry()
	switch ev.Key() {
	case tcell.KeyTab, tcell.KeyBacktab:
		if focused == s.username {
			s.focusEntry(s.password)
		} else {
			s.focusEntry(s.username)
		}
		return true
	case tcell.KeyEnter:
		switch focused {
		case s.username:
			s.focusEntry(s.password)
		case s.password:
			s.Login()
		default:
			s.focusEntry(s.username)
		}
		return true
	case tcell.KeyEscape:
		s.blurEntries()
		s.goBack()
		return true
	}
	if focused != nil {
		return focused.HandleKey(ev)
	}
	return false
}

func (s *Shell) homeKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlL:
		s.Lock()
		return true
	case tcell.KeyEscape:
		if id := s.windows.Active(); id != 0 {
			if err := s.windows.Close(id); err == nil {
				return true
			}
		}
		s.goBack()
		return true
	}
	return false
}

func (s *Shell) goBack() {
	if err := s.pages.GoBack(); err != nil {
		s.log.Debug("go back ignored", zap.Error(err))
	}
}

// Accessors used by the command and tests.

func (s *Shell) Pages() *texel.PageStack       { return s.pages }
func (s *Shell) Windows() *texel.WindowStack   { return s.windows }
func (s *Shell) Hits() *texel.HitTestRegistry  { return s.hits }
func (s *Shell) Frame() *texel.FrameDriver     { return s.frame }
func (s *Shell) Scene() *texel.Scene           { return s.scene }
func (s *Shell) Compositor() *texel.Compositor { return s.compositor }
func (s *Shell) Taskbar() *taskbar.Taskbar     { return s.taskbar }
func (s *Shell) Runtime() *progrt.Runtime      { return s.runtime }
func (s *Shell) Preferences() *config.Store    { return s.prefs }
func (s *Shell) Username() *Entry              { return s.username }
func (s *Shell) Password() *Entry              { return s.password }
func (s *Shell) TimeText() string              { return s.timeLabel.Visual.Text }
func (s *Shell) DateText() string              { return s.dateLabel.Visual.Text }
func (s *Shell) Title() string {
	return s.doc.GetString(config.SectionDisplay, config.KeyTitle, config.DefaultTitle)
}
