package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// ANSI colors of tsc's pretty output.
const (
	colorReset  = "\u001b[0m"
	colorRed    = "\u001b[91m"
	colorYellow = "\u001b[93m"
	colorCyan   = "\u001b[96m"
	colorGrey   = "\u001b[90m"
	colorGutter = "\u001b[7m"
)

// DiagnosticReporter writes one syntax diagnostic.
type DiagnosticReporter func(d ast.Diagnostic)

// IsPrettyOutput reports whether diagnostics should be colored and carry a
// code snippet. NO_COLOR wins over FORCE_COLOR, which wins over a terminal
// check of stderr.
func IsPrettyOutput() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// CreateDiagnosticReporter returns a reporter writing to w with paths made
// relative to cwd. Plain output is one line per diagnostic,
//
//	file(line,col): error DTS1005: message
//
// and pretty output adds colors and the offending source lines.
func CreateDiagnosticReporter(w io.Writer, cwd string, pretty bool) DiagnosticReporter {
	if !pretty {
		return func(d ast.Diagnostic) {
			if loc, ok := locate(d, cwd); ok {
				fmt.Fprintf(w, "%s(%d,%d): ", loc.file, loc.line, loc.col)
			}
			fmt.Fprintf(w, "error DTS%d: %s\n", d.Code, d.Message)
		}
	}
	return func(d ast.Diagnostic) {
		loc, ok := locate(d, cwd)
		if ok {
			fmt.Fprintf(w, "%s%s%s:%s%d%s:%s%d%s - ",
				colorCyan, loc.file, colorReset,
				colorYellow, loc.line, colorReset,
				colorYellow, loc.col, colorReset)
		}
		fmt.Fprintf(w, "%serror%s %sDTS%d:%s %s\n", colorRed, colorReset, colorGrey, d.Code, colorReset, d.Message)
		if ok {
			writeSnippet(w, d.File, d.Pos, d.End)
			fmt.Fprint(w, "\n")
		}
		fmt.Fprint(w, "\n")
	}
}

// location is a 1-based position with a display path.
type location struct {
	file      string
	line, col int
}

func locate(d ast.Diagnostic, cwd string) (location, bool) {
	if d.File == nil {
		return location{}, false
	}
	line, col := d.File.LineAndColumn(d.Pos)
	return location{file: relativePath(d.File.FileName, cwd), line: line + 1, col: col + 1}, true
}

// writeSnippet prints the lines of file covering [pos, end) with a line
// number gutter and a row of squiggles under the covered text. Spans of
// five lines or more show only their first two and last two lines.
func writeSnippet(w io.Writer, file *ast.SourceFile, pos, end int) {
	text := file.Text
	pos = min(max(pos, 0), len(text))
	end = min(max(end, pos), len(text))

	firstLine, firstCol := file.LineAndColumn(pos)
	lastLine, lastCol := file.LineAndColumn(end)
	if end == pos {
		lastCol++
	}
	starts := file.LineStarts()
	elide := lastLine-firstLine >= 4

	gutter := len(strconv.Itoa(lastLine + 1))
	if elide {
		gutter = max(gutter, len("..."))
	}
	row := func(label, content string) {
		fmt.Fprintf(w, "%s%*s%s %s", colorGutter, gutter, label, colorReset, content)
	}

	for i := firstLine; i <= lastLine; i++ {
		if elide && i == firstLine+2 {
			row("...", "\n")
			i = lastLine - 1
		}
		lineEnd := len(text)
		if i+1 < len(starts) {
			lineEnd = starts[i+1]
		}
		content := strings.TrimRightFunc(text[starts[i]:lineEnd], unicode.IsSpace)
		content = strings.ReplaceAll(content, "\t", " ")
		row(strconv.Itoa(i+1), content+"\n")

		var from, to int
		switch {
		case i == firstLine && i == lastLine:
			from, to = firstCol, max(lastCol, firstCol+1)
		case i == firstLine:
			from, to = firstCol, max(len(content), firstCol+1)
		case i == lastLine:
			to = lastCol
		default:
			to = len(content)
		}
		row("", colorRed+strings.Repeat(" ", from)+strings.Repeat("~", max(to-from, 0))+colorReset)
	}
}

// WriteErrorSummary writes tsc's closing "Found N errors" line.
func WriteErrorSummary(w io.Writer, diags []ast.Diagnostic, cwd string) {
	if len(diags) == 0 {
		return
	}
	files := FilesWithSyntaxErrors(diags)
	first, located := locate(diags[0], cwd)
	at := func() string {
		return fmt.Sprintf("%s%s:%d%s", first.file, colorGrey, first.line, colorReset)
	}

	fmt.Fprint(w, "\n")
	switch {
	case len(diags) == 1 && located:
		fmt.Fprintf(w, "Found 1 error in %s\n", at())
	case len(diags) == 1:
		fmt.Fprintln(w, "Found 1 error.")
	case len(files) <= 1 && located:
		fmt.Fprintf(w, "Found %d errors in the same file, starting at: %s\n", len(diags), at())
	case len(files) <= 1:
		fmt.Fprintf(w, "Found %d errors.\n", len(diags))
	default:
		fmt.Fprintf(w, "Found %d errors in %d files.\n", len(diags), len(files))
	}
	fmt.Fprint(w, "\n")
}

// FilesWithSyntaxErrors returns the names of the files diags point into.
func FilesWithSyntaxErrors(diags []ast.Diagnostic) map[string]bool {
	files := make(map[string]bool)
	for _, d := range diags {
		if d.File != nil {
			files[d.File.FileName] = true
		}
	}
	return files
}

func relativePath(absPath, cwd string) string {
	if cwd == "" {
		return absPath
	}
	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}
