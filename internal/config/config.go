// Package config loads the dtsresolve configuration from JSON, YAML or TOML.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files discovered in a directory, in lookup order.
var FileNames = []string{"dtsresolve.json", "dtsresolve.yaml", "dtsresolve.yml", "dtsresolve.toml"}

// Parser names.
const (
	ParserNative     = "native"
	ParserTreeSitter = "tree-sitter"
)

// Config represents the dtsresolve configuration.
type Config struct {
	Include []string            `json:"include" yaml:"include" toml:"include"`
	Exclude []string            `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	RootDir string              `json:"rootDir,omitempty" yaml:"rootDir,omitempty" toml:"rootDir,omitempty"` // inferred from the inputs when empty
	OutDir  string              `json:"outDir" yaml:"outDir" toml:"outDir"`
	BaseURL string              `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"`
	Paths   map[string][]string `json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths,omitempty"`
	Parser  string              `json:"parser,omitempty" yaml:"parser,omitempty" toml:"parser,omitempty"`
	Workers int                 `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"` // 0 uses GOMAXPROCS

	Format    FormatConfig    `json:"format" yaml:"format" toml:"format"`
	Transform TransformConfig `json:"transform" yaml:"transform" toml:"transform"`
	Links     LinksConfig     `json:"links" yaml:"links" toml:"links"`

	// Dir is the directory relative paths are resolved against: the config
	// file's directory, or the working directory without a file.
	Dir string `json:"-" yaml:"-" toml:"-"`
	// Path is the file the config was read from, empty for defaults.
	Path string `json:"-" yaml:"-" toml:"-"`
}

// FormatConfig controls the printed layout.
type FormatConfig struct {
	Indent                  int  `json:"indent" yaml:"indent" toml:"indent"`
	MultilineObjectLiterals bool `json:"multilineObjectLiterals" yaml:"multilineObjectLiterals" toml:"multilineObjectLiterals"`
	RemoveComments          bool `json:"removeComments,omitempty" yaml:"removeComments,omitempty" toml:"removeComments,omitempty"`
}

// TransformConfig switches the individual rewrites.
type TransformConfig struct {
	ExpandEnumGenerics bool `json:"expandEnumGenerics" yaml:"expandEnumGenerics" toml:"expandEnumGenerics"`
	FlattenInterfaces  bool `json:"flattenInterfaces" yaml:"flattenInterfaces" toml:"flattenInterfaces"`
	PruneUnexported    bool `json:"pruneUnexported" yaml:"pruneUnexported" toml:"pruneUnexported"`
	QualifyNamespaces  bool `json:"qualifyNamespaces" yaml:"qualifyNamespaces" toml:"qualifyNamespaces"`
}

// LinksConfig configures README link stitching.
type LinksConfig struct {
	Readme    string `json:"readme,omitempty" yaml:"readme,omitempty" toml:"readme,omitempty"`
	Template  string `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`
	BaseURL   string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"`
	SourceDir string `json:"sourceDir,omitempty" yaml:"sourceDir,omitempty" toml:"sourceDir,omitempty"` // defaults to outDir
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Include: []string{"**/*.d.ts"},
		OutDir:  "dist/types",
		Parser:  ParserNative,
		Format: FormatConfig{
			Indent:                  4,
			MultilineObjectLiterals: true,
		},
		Transform: TransformConfig{
			ExpandEnumGenerics: true,
			FlattenInterfaces:  true,
			PruneUnexported:    true,
			QualifyNamespaces:  true,
		},
		Links: LinksConfig{
			Readme:   "README.md",
			Template: "nolinks.README.md",
		},
	}
}

// Find returns the first config file in dir, if any.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Discover loads path, or the config file found in dir when path is empty,
// or the defaults when there is none.
func Discover(path, dir string) (*Config, error) {
	if path == "" {
		found, ok := Find(dir)
		if !ok {
			cfg := DefaultConfig()
			cfg.Dir = dir
			return &cfg, nil
		}
		path = found
	}
	return Load(path)
}

// Load reads and validates a config file. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "reading config file %q", path),
			"pass --config with an existing file, or remove the flag to use defaults")
	}

	cfg := DefaultConfig()
	if err := decode(path, data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %q", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.Dir = filepath.Dir(abs)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config in %q", path)
	}
	return &cfg, nil
}

// decode fills cfg from data, rejecting unknown keys.
func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(data, cfg, json.RejectUnknownMembers(true))
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		// toml matches keys case-insensitively, so md.Undecoded misses
		// "outdir" for "outDir".
		var unknown []string
		for _, k := range md.Keys() {
			if !knownTOMLKey(reflect.TypeFor[Config](), k) {
				unknown = append(unknown, k.String())
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return errors.Newf("unknown keys: %s", strings.Join(unknown, ", "))
		}
		return nil
	default:
		return errors.WithHint(errors.Newf("unsupported config format %q", ext), "use .json, .yaml, .yml or .toml")
	}
}

// knownTOMLKey reports whether key names a field of t by its exact toml
// tag. Anything below a map field is accepted.
func knownTOMLKey(t reflect.Type, key toml.Key) bool {
	for _, part := range key {
		if t.Kind() == reflect.Map {
			return true
		}
		if t.Kind() != reflect.Struct {
			return false
		}
		field, ok := tomlField(t, part)
		if !ok {
			return false
		}
		t = field.Type
	}
	return true
}

func tomlField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if tag != "" && tag != "-" && tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// Abs resolves p against the config directory.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// OutDirAbs returns the absolute output directory.
func (c *Config) OutDirAbs() string { return c.Abs(c.OutDir) }

// RootDirAbs returns the absolute root directory, or "" when it is inferred.
func (c *Config) RootDirAbs() string { return c.Abs(c.RootDir) }

// BaseDirAbs returns the directory "paths" targets are resolved against.
func (c *Config) BaseDirAbs() string {
	if c.BaseURL != "" {
		return c.Abs(c.BaseURL)
	}
	return c.Dir
}

// IndentString returns the indentation unit.
func (c *Config) IndentString() string {
	if c.Format.Indent <= 0 {
		return "    "
	}
	return strings.Repeat(" ", c.Format.Indent)
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if len(c.Include) == 0 {
		return errors.New("include must have at least one pattern")
	}
	switch c.Parser {
	case "", ParserNative, ParserTreeSitter:
	default:
		return errors.WithHintf(errors.Newf("unknown parser %q", c.Parser), "use %q or %q", ParserNative, ParserTreeSitter)
	}
	if c.Workers < 0 {
		return errors.Newf("workers must not be negative, got %d", c.Workers)
	}
	if c.OutDir == "" {
		return errors.New("outDir must not be empty")
	}
	if c.RootDir != "" && filepath.Clean(c.OutDirAbs()) == filepath.Clean(c.RootDirAbs()) {
		return errors.WithHint(errors.Newf("outDir %q equals rootDir", c.OutDir), "outputs would overwrite the inputs")
	}
	return nil
}
