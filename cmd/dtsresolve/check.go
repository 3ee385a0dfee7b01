package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/tsgonest/dtsresolve/internal/config"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/printer"
	"github.com/tsgonest/dtsresolve/internal/transform"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// checkFlags holds the flags of the check command.
type checkFlags struct {
	ConfigPath string
	Parser     string
}

func newCheckCmd(a *app, f *checkFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that rewriting the output again changes nothing",
		Long: `Check rewrites every module, then rewrites the printed result a second
time and fails when any file differs. Nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}
			return a.check(cmd.Context(), cwd, *f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: discovered in the working directory)")
	fl.StringVar(&f.Parser, "parser", "", "Parser frontend: native or tree-sitter")
	return cmd
}

func (a *app) check(ctx context.Context, cwd string, f checkFlags) error {
	cfg, err := a.loadConfig(f.ConfigPath, cwd, configOverrides{Parser: f.Parser})
	if err != nil {
		return err
	}

	first, err := a.printPass(ctx, cfg, vfs.Cached(vfs.OS()), nil, cwd)
	if err != nil {
		return err
	}

	// The second pass reads the printed text in place of the inputs so
	// relative imports still resolve.
	names := slices.Sorted(maps.Keys(first))
	overlay := &vfs.Overlay{Base: vfs.OS(), VirtualFiles: first}
	second, err := a.printPass(ctx, cfg, overlay, names, cwd)
	if err != nil {
		return errors.Wrap(err, "rewriting the printed output")
	}

	var changed []string
	for _, name := range names {
		if first[name] != second[name] {
			changed = append(changed, name)
		}
	}
	if len(changed) > 0 {
		for _, name := range changed {
			fmt.Fprintf(a.stderr, "not stable: %s\n", relativeTo(cwd, name))
			a.log.Debugw("second pass output", "file", name, "text", second[name])
		}
		fmt.Fprintf(a.stderr, "%d of %d file(s) change when rewritten again\n", len(changed), len(first))
		return errReported
	}
	fmt.Fprintf(a.stderr, "checked %d file(s): output is stable\n", len(first))
	return nil
}

// printPass parses, rewrites and prints the program, returning the printed
// text of every root keyed by its source path.
func (a *app) printPass(ctx context.Context, cfg *config.Config, fs vfs.FS, files []string, cwd string) (map[string]string, error) {
	proj, diags, err := a.openProject(ctx, cfg, fs, files)
	if err != nil {
		return nil, err
	}
	if err := a.reportDiagnostics(diags, cwd); err != nil {
		return nil, err
	}
	collector := diagnostic.NewCollector(diagnostic.SeverityInfo)
	results, err := transform.TransformProgram(ctx, proj.prog, transformOptions(cfg, collector, a))
	if err != nil {
		return nil, err
	}
	a.logCollected(collector)

	p := printer.New(printerOptions(cfg))
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.Source.FileName] = p.PrintFile(r.File)
	}
	return out, nil
}
