package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsgonest/dtsresolve/internal/compiler"
	"github.com/tsgonest/dtsresolve/internal/logger"
)

const version = "0.1.0-dev"

// errReported is returned by commands that already printed why they failed.
var errReported = errors.New("failure already reported")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

// printError writes err and its hints unless they were already reported.
func (a *app) printError(err error) {
	if errors.Is(err, errReported) {
		return
	}
	fmt.Fprintf(a.stderr, "error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(a.stderr, "hint: %s\n", hint)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	Verbose   bool
	Quiet     bool
	LogFormat string
	Pretty    bool
}

// app carries what every command needs once the root command has parsed
// the global flags.
type app struct {
	stdout io.Writer
	stderr io.Writer
	// in replaces os.Stdin in tests.
	in     io.Reader
	global globalFlags
	log    *zap.SugaredLogger
}

func (a *app) stdin() io.Reader {
	if a.in != nil {
		return a.in
	}
	return os.Stdin
}

func newRootCmd(a *app) *cobra.Command {
	if a.log == nil {
		a.log = logger.Nop()
	}

	root := &cobra.Command{
		Use:   "dtsresolve",
		Short: "Rewrite TypeScript declaration files into a self-contained public surface",
		Long: `dtsresolve reads TypeScript declaration sources and writes .d.ts files whose
exported surface is self-contained: written types are replaced by the types
they resolve to, references are qualified so they resolve outside their
module, generic functions over enumerable constraints become overloads, and
unexported values are pruned.

Examples:
  dtsresolve build                    # build using dtsresolve.json in the working directory
  dtsresolve build --out-dir out      # override the output directory
  dtsresolve watch --exec "npm test"  # rebuild on change and rerun a command
  dtsresolve check                    # fail when a second pass would change the output
  dtsresolve links --base-url https://example.com/blob/main/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Options{
				Verbose: a.global.Verbose,
				Quiet:   a.global.Quiet,
				Format:  a.global.LogFormat,
				Color:   a.global.Pretty,
				Output:  a.stderr,
			})
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.global.Verbose, "verbose", "v", false, "Log debug output")
	pf.BoolVarP(&a.global.Quiet, "quiet", "q", false, "Log only warnings and errors")
	pf.StringVar(&a.global.LogFormat, "log-format", logger.FormatConsole, "Log format: console or json")
	pf.BoolVar(&a.global.Pretty, "pretty", compiler.IsPrettyOutput(), "Print diagnostics with color and code snippets")

	root.AddCommand(
		newBuildCmd(a, &buildFlags{}),
		newWatchCmd(a, &watchFlags{}),
		newCheckCmd(a, &checkFlags{}),
		newDumpCmd(a, &dumpFlags{}),
		newLinksCmd(a, &linksFlags{}),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dtsresolve version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, "dtsresolve", version)
		},
	}
}
