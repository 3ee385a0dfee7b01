package config

import (
	"fmt"
	"strings"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}
	if err := c.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, pattern := range c.Include {
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, ".ts") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("include: pattern %q has no wildcard or .ts extension; did you mean %q?", pattern, pattern+"/**/*.d.ts"))
		}
	}

	t := c.Transform
	if !t.ExpandEnumGenerics && !t.FlattenInterfaces && !t.PruneUnexported && !t.QualifyNamespaces {
		result.Warnings = append(result.Warnings,
			"transform: every rewrite is disabled; outputs only canonicalize types")
	}

	if c.Format.Indent > 8 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("format.indent: %d spaces is unusual", c.Format.Indent))
	}

	if c.Links.Readme != "" && c.Links.Readme == c.Links.Template {
		result.Errors = append(result.Errors,
			"links: readme and template must differ; the template is read back on every run")
	}

	if c.BaseURL != "" && len(c.Paths) == 0 {
		result.Warnings = append(result.Warnings, "baseUrl: set without paths; it has no effect")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
