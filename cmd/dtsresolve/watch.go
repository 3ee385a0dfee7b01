package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/tsgonest/dtsresolve/internal/runner"
	"github.com/tsgonest/dtsresolve/internal/watcher"
)

// watchFlags holds the flags of the watch command.
type watchFlags struct {
	ConfigPath     string
	Exec           string
	PreserveOutput bool
	ManualRestart  bool
}

var watchExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

func newWatchCmd(a *app, f *watchFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever an input file or the config changes",
		Long: `Watch builds once, then rebuilds after every batch of changes to the
project's TypeScript files or its config file. With --exec the command is
started after each successful build and restarted after the next one.

Examples:
  dtsresolve watch
  dtsresolve watch --exec "npm run docs"
  dtsresolve watch --manual-restart   # type "rs" to rebuild on demand`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), cwd, *f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: discovered in the working directory)")
	fl.StringVar(&f.Exec, "exec", "", "Command to (re)start after each successful build")
	fl.BoolVar(&f.PreserveOutput, "preserve-output", false, "Don't clear the terminal between rebuilds")
	fl.BoolVar(&f.ManualRestart, "manual-restart", false, "Rebuild when \"rs\" is entered on stdin")
	return cmd
}

func (a *app) watch(ctx context.Context, cwd string, f watchFlags) error {
	bf := buildFlags{ConfigPath: f.ConfigPath}

	fmt.Fprintln(a.stderr, "performing initial build...")
	out, err := a.build(ctx, cwd, bf)
	if out == nil {
		// Without a config there is nothing to watch.
		return err
	}
	built := err == nil
	if built {
		fmt.Fprintln(a.stderr, "initial build succeeded")
	} else {
		a.printError(err)
		fmt.Fprintln(a.stderr, "initial build failed, watching for changes...")
	}
	cfg := out.Config

	var proc *runner.Runner
	if f.Exec != "" {
		proc, err = runner.Parse(f.Exec, cwd)
		if err != nil {
			return errors.WithHint(errors.Wrap(err, "parsing --exec"), `quote the whole command, e.g. --exec "npm test"`)
		}
		proc.DisableStdin = f.ManualRestart
		defer proc.Stop()
		if built {
			fmt.Fprintf(a.stderr, "starting: %s\n", proc)
			if err := proc.Start(); err != nil {
				fmt.Fprintf(a.stderr, "error starting process: %v\n", err)
			}
		}
	}

	// Rebuilds triggered by the watcher and by "rs" never overlap.
	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		if _, err := a.build(ctx, cwd, bf); err != nil {
			a.printError(err)
			fmt.Fprintln(a.stderr, "build failed, waiting for changes...")
			return
		}
		if proc != nil {
			fmt.Fprintln(a.stderr, "restarting...")
			if err := proc.Restart(); err != nil {
				fmt.Fprintf(a.stderr, "error restarting: %v\n", err)
			}
		}
		if f.ManualRestart {
			fmt.Fprintln(a.stderr, `To restart at any time, enter "rs".`)
		}
	}

	w, err := watcher.New([]string{cfg.Dir}, watchExtensions, watcher.DefaultDebounce, func(events []watcher.Event) {
		if !f.PreserveOutput {
			// Clear the terminal like tsc --watch.
			fmt.Fprint(a.stderr, "\033[2J\033[H")
		}
		fmt.Fprintf(a.stderr, "\ndetected %d change(s), rebuilding...\n", len(events))
		rebuild()
	}, a.log)
	if err != nil {
		return err
	}
	defer w.Close()

	w.Ignore(cfg.OutDirAbs())
	if cfg.Path != "" {
		if err := w.AddFile(cfg.Path); err != nil {
			return err
		}
	}
	// Imports resolved outside the project directory are watched one by one.
	for _, in := range out.Inputs {
		if !within(in, cfg.Dir) {
			if err := w.AddFile(in); err != nil {
				a.log.Warnw("cannot watch input", "file", in, "error", err)
			}
		}
	}

	if f.ManualRestart {
		go func() {
			scanner := bufio.NewScanner(a.stdin())
			for scanner.Scan() {
				if strings.TrimSpace(scanner.Text()) == "rs" {
					fmt.Fprintln(a.stderr, "\nmanual restart triggered...")
					rebuild()
				}
			}
		}()
		fmt.Fprintln(a.stderr, `To restart at any time, enter "rs".`)
	}

	fmt.Fprintln(a.stderr, "watching for changes...")
	err = w.Watch(ctx)
	fmt.Fprintln(a.stderr, "\nshutting down...")
	return err
}

func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
