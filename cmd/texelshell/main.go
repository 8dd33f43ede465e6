// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshell/main.go
// Summary: Entry point for the texelshell desktop.
// Usage: Run `texelshell` in a terminal; `texelshell programs` and
// `texelshell history` inspect the catalog and launch history, and
// `texelshell passwd <user>` stores a bcrypt-hashed login.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/framegrace/texelshell/apps/desktop"
	"github.com/framegrace/texelshell/auth"
	"github.com/framegrace/texelshell/config"
	"github.com/framegrace/texelshell/internal/history"
	"github.com/framegrace/texelshell/internal/logging"
	"github.com/framegrace/texelshell/registry"
	"github.com/framegrace/texelshell/texel"
)

const envPrefix = "TEXELSHELL"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "texelshell",
		Short:         "A desktop shell simulated in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("root", "", "state directory (default: user config dir)")
	flags.String("programs", "", "programs directory (default: <root>/programs)")
	flags.String("prefs", "", "preferences file (default: <root>/preferences.json)")
	flags.String("history", "", "launch history database (default: <root>/history.db)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	root.Flags().Int("fps", 0, "frame rate (default: from preferences)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("fps", root.Flags().Lookup("fps")); err != nil {
		panic(err)
	}

	root.AddCommand(newProgramsCmd(v), newHistoryCmd(v), newPasswdCmd(v))
	return root
}

// resolvePaths lays out the state files and applies per-file overrides.
func resolvePaths(v *viper.Viper) (config.Paths, error) {
	rootDir := v.GetString("root")
	if rootDir == "" {
		def, err := config.DefaultRoot()
		if err != nil {
			return config.Paths{}, err
		}
		rootDir = def
	}
	paths := config.PathsFor(rootDir)
	if p := v.GetString("programs"); p != "" {
		paths.Programs = p
	}
	if p := v.GetString("prefs"); p != "" {
		paths.Preferences = p
	}
	if p := v.GetString("history"); p != "" {
		paths.History = p
	}
	if err := paths.EnsureRoot(); err != nil {
		return config.Paths{}, fmt.Errorf("create state directory: %w", err)
	}
	return paths, nil
}

func runShell(ctx context.Context, v *viper.Viper) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("texelshell needs an interactive terminal")
	}

	paths, err := resolvePaths(v)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logger, err := logging.New(logging.FileConfig(v.GetString("log-level"), paths.Log))
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("texelshell starting",
		zap.String("root", paths.Root),
		zap.String("programs", paths.Programs),
		zap.String("preferences", paths.Preferences))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	shell, err := desktop.New(desktop.Options{
		Paths:     paths,
		FrameRate: v.GetInt("fps"),
		Screen:    texel.NewTcellScreenDriver(screen),
		Log:       logger,
	})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shell.Run(ctx); err != nil {
		logger.Error("shell stopped with error", zap.Error(err))
		return err
	}
	logger.Info("texelshell stopped")
	return nil
}

func newProgramsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List installed programs and load failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(v)
			if err != nil {
				return err
			}
			cat, err := registry.Scan(paths.Programs, zap.NewNop())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range cat.Programs {
				fmt.Fprintf(out, "%s  %-20s %s\n", m.Icon, m.Name, m.Description)
			}
			for _, f := range cat.Failures {
				fmt.Fprintf(out, "!  %s\n", f.Error())
			}
			if cat.Len() == 0 && len(cat.Failures) == 0 {
				fmt.Fprintf(out, "no programs in %s\n", paths.Programs)
			}
			return nil
		},
	}
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent program launches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(v)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			store, err := history.Open(paths.History)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range records {
				status := "ok"
				if r.Failed() {
					status = r.Err
				}
				fmt.Fprintf(out, "%s  %-20s %8s  %s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Program, r.Duration.Round(time.Millisecond), status)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "number of launches to show")
	return cmd
}

func newPasswdCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <user>",
		Short: "Set a login password, stored as a bcrypt hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := args[0]
			paths, err := resolvePaths(v)
			if err != nil {
				return err
			}
			store := config.NewStore(paths.Preferences, zap.NewNop())
			// A broken file would be replaced by defaults on save.
			doc, err := store.Load()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", user)
			password, err := readPassword(cmd.InOrStdin())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("empty password")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			users := config.Section{}
			for name, stored := range doc.GetStringMap(config.SectionAuth, config.KeyUsers) {
				users[name] = stored
			}
			users[user] = hash
			doc.Set(config.SectionAuth, config.KeyUsers, users)
			store.Set(doc)
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s updated\n", user)
			return nil
		},
	}
}

// readPassword reads one line, without echo when in is a terminal.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
