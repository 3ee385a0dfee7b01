package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tsgonest/dtsresolve/internal/buildcache"
	"github.com/tsgonest/dtsresolve/internal/config"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/emit"
	"github.com/tsgonest/dtsresolve/internal/transform"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// buildFlags holds the flags of the build command.
type buildFlags struct {
	ConfigPath string
	OutDir     string
	Parser     string
	Workers    int
	Force      bool
	Summary    bool
}

func newBuildCmd(a *app, f *buildFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rewrite the configured declaration files into the output directory",
		Long: `Build discovers the input files, rewrites every module and writes the
results to outDir together with a manifest. A build whose inputs, config and
outputs are unchanged since the last one is skipped; --force rebuilds anyway.

Examples:
  dtsresolve build
  dtsresolve build --config dtsresolve.yaml --out-dir dist/types
  dtsresolve build --parser tree-sitter --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}
			out, err := a.build(cmd.Context(), cwd, *f)
			if err != nil {
				return err
			}
			if f.Summary && out.Report != nil {
				return printSummary(a.stdout, out)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: discovered in the working directory)")
	fl.StringVar(&f.OutDir, "out-dir", "", "Output directory, overriding outDir")
	fl.StringVar(&f.Parser, "parser", "", "Parser frontend: native or tree-sitter")
	fl.IntVar(&f.Workers, "workers", 0, "Modules parsed and rewritten in parallel (default: GOMAXPROCS)")
	fl.BoolVar(&f.Force, "force", false, "Ignore the build cache")
	fl.BoolVar(&f.Summary, "summary", false, "Print a table of the written files")
	return cmd
}

// buildOutcome describes one build.
type buildOutcome struct {
	Config *config.Config
	// Inputs are every file the program read, imports included.
	Inputs  []string
	Results []*transform.Result
	Report  *emit.Report
	Stats   transform.Stats
	// Cached is set when the build was skipped.
	Cached bool
	Timing TimingReport
}

// build runs the whole pipeline once. On failure the outcome is still
// returned when the config loaded, so watch mode knows what to watch.
func (a *app) build(ctx context.Context, cwd string, f buildFlags) (*buildOutcome, error) {
	start := time.Now()
	out := &buildOutcome{}

	step := time.Now()
	cfg, err := a.loadConfig(f.ConfigPath, cwd, configOverrides{OutDir: f.OutDir, Parser: f.Parser, Workers: f.Workers})
	if err != nil {
		return nil, err
	}
	out.Config = cfg
	out.Timing.Config = time.Since(step)

	step = time.Now()
	proj, diags, err := a.openProject(ctx, cfg, vfs.Cached(vfs.OS()), nil)
	if err != nil {
		return out, err
	}
	for _, sf := range proj.prog.SourceFiles() {
		out.Inputs = append(out.Inputs, filepath.FromSlash(sf.FileName))
	}
	out.Timing.Program = time.Since(step)
	if err := a.reportDiagnostics(diags, cwd); err != nil {
		return out, err
	}

	step = time.Now()
	outDir := cfg.OutDirAbs()
	cachePath := buildcache.CachePath(outDir)
	hash := configHash(cfg)
	inputs := buildcache.HashInputs(out.Inputs)
	miss := "forced"
	if f.Force {
		buildcache.Delete(cachePath)
	} else {
		miss = buildcache.Load(cachePath).Miss(hash, inputs)
	}
	if miss == "" {
		out.Cached = true
		out.Timing.Cache = time.Since(step)
		out.Timing.Total = time.Since(start)
		fmt.Fprintf(a.stderr, "up to date: %d file(s) unchanged since the last build\n", len(proj.prog.RootFiles()))
		return out, nil
	}
	out.Timing.Cache = time.Since(step)
	a.log.Debugw("rebuilding", "reason", miss)

	step = time.Now()
	collector := diagnostic.NewCollector(diagnostic.SeverityInfo)
	results, err := transform.TransformProgram(ctx, proj.prog, transformOptions(cfg, collector, a))
	if err != nil {
		return out, err
	}
	out.Results = results
	for _, r := range results {
		out.Stats.Add(r.Stats)
	}
	out.Timing.Transform = time.Since(step)

	step = time.Now()
	emitter := emit.New(emit.Options{
		RootDir:     proj.rootDir,
		OutDir:      outDir,
		Printer:     printerOptions(cfg),
		Aliases:     proj.aliases,
		Diagnostics: collector,
		Logger:      a.log,
	})
	report, err := emitter.Emit(results, proj.prog.Checker())
	if err != nil {
		return out, err
	}
	a.logCollected(collector)
	out.Report = report
	out.Timing.Emit = time.Since(step)

	outputs := append(append([]string(nil), report.Outputs...), emit.ManifestPath(outDir))
	if err := buildcache.Save(cachePath, buildcache.New(hash, inputs, outputs)); err != nil {
		a.log.Warnw("could not save build cache", "file", cachePath, "error", err)
	}

	out.Timing.Total = time.Since(start)
	fmt.Fprintf(a.stderr, "built %d declaration file(s) in %s (%d written, %d unchanged)\n",
		len(results), out.Timing.Total.Round(time.Millisecond), report.Written, report.Unchanged)
	if a.global.Verbose {
		out.Timing.Print(a.stderr)
	}
	return out, nil
}

// printSummary renders the written files and the rewrite counts as tables.
func printSummary(w io.Writer, out *buildOutcome) error {
	files := pterm.TableData{{"Source", "Output", "Exports"}}
	for _, e := range out.Report.Manifest.Files {
		files = append(files, []string{e.Source, e.Output, strconv.Itoa(len(e.Exports))})
	}
	text, err := pterm.DefaultTable.WithHasHeader().WithData(files).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, text)

	s := out.Stats
	counts := pterm.TableData{
		{"Rewrite", "Count"},
		{"generic declarations expanded", strconv.Itoa(s.Expanded)},
		{"overloads synthesized", strconv.Itoa(s.Overloads)},
		{"declarations pruned", strconv.Itoa(s.Pruned)},
		{"inherited values retained", strconv.Itoa(s.Retained)},
		{"interfaces flattened", strconv.Itoa(s.Flattened)},
		{"references qualified", strconv.Itoa(s.Qualified)},
		{"public aliases substituted", strconv.Itoa(s.Substituted)},
		{"import types written", strconv.Itoa(s.ImportTypes)},
	}
	text, err = pterm.DefaultTable.WithHasHeader().WithData(counts).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, text)
	return nil
}
