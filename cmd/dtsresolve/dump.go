package main

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/checker"
	"github.com/tsgonest/dtsresolve/internal/diagnostic"
	"github.com/tsgonest/dtsresolve/internal/transform"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// dumpFlags holds the flags of the dump command.
type dumpFlags struct {
	ConfigPath string
	Parser     string
}

// moduleDump is the JSON description of one module.
type moduleDump struct {
	File           string            `json:"file"`
	Exports        []exportDump      `json:"exports"`
	Qualifications map[string]string `json:"qualifications,omitempty"`
	Enums          []enumDump        `json:"enums,omitempty"`
	Stats          transform.Stats   `json:"stats"`
}

type exportDump struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type enumDump struct {
	Name    string           `json:"name"`
	Members []enumMemberDump `json:"members"`
}

type enumMemberDump struct {
	Name string `json:"name"`
	// Value is a number or a string; computed members have none.
	Value any `json:"value,omitempty"`
}

func newDumpCmd(a *app, f *dumpFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file...]",
		Short: "Print what the checker sees in each module as JSON",
		Long: `Dump describes every root module, or only the given files: the exported
names with their symbol kinds, the namespace import aliases references are
qualified with, the members of exported enums with their evaluated values,
and what the rewrite changed. Nothing is written to disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}
			return a.dump(cmd.Context(), cwd, *f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: discovered in the working directory)")
	fl.StringVar(&f.Parser, "parser", "", "Parser frontend: native or tree-sitter")
	return cmd
}

func (a *app) dump(ctx context.Context, cwd string, f dumpFlags, files []string) error {
	cfg, err := a.loadConfig(f.ConfigPath, cwd, configOverrides{Parser: f.Parser})
	if err != nil {
		return err
	}
	for i, name := range files {
		if !filepath.IsAbs(name) {
			name = filepath.Join(cwd, name)
		}
		files[i] = filepath.ToSlash(name)
	}
	proj, diags, err := a.openProject(ctx, cfg, vfs.Cached(vfs.OS()), files)
	if err != nil {
		return err
	}
	if err := a.reportDiagnostics(diags, cwd); err != nil {
		return err
	}
	collector := diagnostic.NewCollector(diagnostic.SeverityInfo)
	results, err := transform.TransformProgram(ctx, proj.prog, transformOptions(cfg, collector, a))
	if err != nil {
		return err
	}
	a.logCollected(collector)

	c := proj.prog.Checker()
	modules := make([]moduleDump, 0, len(results))
	for _, r := range results {
		modules = append(modules, describeModule(c, r, cwd))
	}
	data, err := json.Marshal(modules, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return errors.Wrap(err, "encoding dump")
	}
	data = append(data, '\n')
	_, err = a.stdout.Write(data)
	return err
}

// describeModule lists the exports of r's module as the checker resolves
// them.
func describeModule(c *checker.Checker, r *transform.Result, cwd string) moduleDump {
	m := moduleDump{
		File:           relativeTo(cwd, r.Source.FileName),
		Exports:        []exportDump{},
		Qualifications: r.Qualifications,
		Stats:          r.Stats,
	}
	mod := r.Source.Symbol
	if mod == nil {
		return m
	}
	names := c.ExportNames(mod)
	syms := c.Exports(mod)
	for i, sym := range syms {
		target := c.ResolveAlias(sym)
		kind := "unresolved"
		if target != nil {
			kind = target.Flags.String()
		}
		m.Exports = append(m.Exports, exportDump{Name: names[i], Kind: kind})
		if target != nil && target.Flags.Has(ast.SymbolEnum) {
			m.Enums = append(m.Enums, describeEnum(c, names[i], target))
		}
	}
	return m
}

func describeEnum(c *checker.Checker, name string, enum *ast.Symbol) enumDump {
	e := enumDump{Name: name, Members: []enumMemberDump{}}
	for _, member := range c.EnumMembers(enum) {
		md := enumMemberDump{Name: member.Name}
		if v, ok := c.EnumMemberValue(member); ok {
			md.Value = v
		}
		e.Members = append(e.Members, md)
	}
	return e
}
