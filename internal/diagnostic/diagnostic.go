// Package diagnostic collects the non-fatal findings of a build: unresolved
// modules, references kept as written and skipped generic expansions.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Severity orders diagnostics from least to most serious.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category names the stage that produced a diagnostic.
type Category string

const (
	CategoryResolution Category = "resolution"
	CategoryExpansion  Category = "expansion"
	CategoryModule     Category = "module"
	CategoryEmit       Category = "emit"
)

// Diagnostic is one finding, positioned at a line of a source file when
// the position is known.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string
	Line     int // 1-based, 0 when unknown
	Message  string
}

// String formats d as "file:line: severity [category] message".
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&sb, ":%d", d.Line)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(d.Severity.String())
	if d.Category != "" {
		fmt.Fprintf(&sb, " [%s]", d.Category)
	}
	sb.WriteString(" ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Collector gathers diagnostics from module transforms running in
// parallel. Diagnostics below the collector's minimum severity are dropped.
// A nil Collector discards everything.
type Collector struct {
	mu    sync.Mutex
	min   Severity
	items []Diagnostic
}

// NewCollector returns a collector keeping diagnostics of at least min.
func NewCollector(min Severity) *Collector {
	return &Collector{min: min}
}

// Report records a diagnostic with a formatted message.
func (c *Collector) Report(sev Severity, category Category, file string, line int, format string, args ...any) {
	if c == nil || sev < c.min {
		return
	}
	d := Diagnostic{
		Severity: sev,
		Category: category,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Infof records an informational diagnostic.
func (c *Collector) Infof(category Category, file string, line int, format string, args ...any) {
	c.Report(SeverityInfo, category, file, line, format, args...)
}

// Warnf records a warning.
func (c *Collector) Warnf(category Category, file string, line int, format string, args ...any) {
	c.Report(SeverityWarning, category, file, line, format, args...)
}

// Diagnostics returns the collected diagnostics ordered by file and line.
// Diagnostics without a file come first. Reports from one file keep their
// order.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	out := append([]Diagnostic(nil), c.items...)
	c.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Count returns how many diagnostics of severity sev were kept.
func (c *Collector) Count(sev Severity) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// ByCategory counts the kept diagnostics per category.
func (c *Collector) ByCategory() map[Category]int {
	out := map[Category]int{}
	if c == nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		out[d.Category]++
	}
	return out
}

// Summary returns a line like "1 warning(s), 3 note(s)", or "no issues".
func (c *Collector) Summary() string {
	var parts []string
	if n := c.Count(SeverityError); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", n))
	}
	if n := c.Count(SeverityWarning); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", n))
	}
	if n := c.Count(SeverityInfo); n > 0 {
		parts = append(parts, fmt.Sprintf("%d note(s)", n))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
