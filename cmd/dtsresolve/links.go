package main

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/tsgonest/dtsresolve/internal/config"
	"github.com/tsgonest/dtsresolve/internal/links"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// linksFlags holds the flags of the links command. Empty values fall back
// to the links section of the config.
type linksFlags struct {
	ConfigPath string
	Readme     string
	Template   string
	BaseURL    string
	Dir        string
}

func newLinksCmd(a *app, f *linksFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Link type names in a README to their declarations",
		Long: `Links indexes the exported declarations of the emitted files, then writes
the README from its template with every inline code span naming a declaration
turned into a reference link, followed by the link definitions.

Examples:
  dtsresolve links --base-url https://github.com/org/repo/blob/main/
  dtsresolve links --template docs/README.src.md --readme README.md --dir dist/types`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir()
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(f.ConfigPath, cwd, configOverrides{})
			if err != nil {
				return err
			}
			return a.links(cfg, *f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to the config file (default: discovered in the working directory)")
	fl.StringVar(&f.Readme, "readme", "", "README to write (default: links.readme, README.md)")
	fl.StringVar(&f.Template, "template", "", "README source without links (default: links.template, nolinks.README.md)")
	fl.StringVar(&f.BaseURL, "base-url", "", "Prefix of every link target")
	fl.StringVar(&f.Dir, "dir", "", "Directory of the declaration files to index (default: outDir)")
	return cmd
}

func (a *app) links(cfg *config.Config, f linksFlags) error {
	readme := firstNonEmpty(f.Readme, cfg.Links.Readme, "README.md")
	template := firstNonEmpty(f.Template, cfg.Links.Template, "nolinks.README.md")
	baseURL := firstNonEmpty(f.BaseURL, cfg.Links.BaseURL)
	dir := firstNonEmpty(f.Dir, cfg.Links.SourceDir, cfg.OutDir)
	readme, template, dir = cfg.Abs(readme), cfg.Abs(template), cfg.Abs(dir)
	if readme == template {
		return errors.WithHint(errors.Newf("readme and template are both %s", readme),
			"the template is the README without generated links; keep it in its own file")
	}

	idx, err := links.Scan(vfs.OS(), dir, a.log)
	if err != nil {
		return err
	}
	if len(idx) == 0 {
		a.log.Warnw("no declarations to link", "dir", dir)
	}
	// Link targets are relative to the project, as in a repository URL.
	for name, loc := range idx {
		if rel, err := filepath.Rel(cfg.Dir, filepath.FromSlash(loc.File)); err == nil {
			loc.File = filepath.ToSlash(rel)
			idx[name] = loc
		}
	}
	if err := links.StitchFile(template, readme, idx, links.Options{BaseURL: baseURL}); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "wrote %s with %d linkable declaration(s)\n", relativeTo(cfg.Dir, readme), len(idx))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
