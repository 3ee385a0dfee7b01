package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

func syntaxError(name, text string, pos, end int) ast.Diagnostic {
	return ast.Diagnostic{
		File:    ast.NewSourceFile(name, text),
		Pos:     pos,
		End:     end,
		Code:    ast.CodeTypeExpected,
		Message: "Type expected.",
	}
}

func TestPlainDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	report := CreateDiagnosticReporter(&buf, "/project", false)
	report(syntaxError("/project/src/a.d.ts", "export type A = string;\nexport type B = ;\n", 40, 41))

	want := "src/a.d.ts(2,17): error DTS1110: Type expected.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrettyDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	report := CreateDiagnosticReporter(&buf, "/project", true)
	report(syntaxError("/project/src/a.d.ts", "export type B = ;\n", 16, 17))

	out := buf.String()
	for _, want := range []string{
		"src/a.d.ts",
		"DTS1110:",
		"Type expected.",
		"export type B = ;",
		strings.Repeat(" ", 16) + "~",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteErrorSummary(t *testing.T) {
	a := syntaxError("/project/a.d.ts", "x\ny\n", 2, 3)
	b := syntaxError("/project/b.d.ts", "x\n", 0, 1)

	tests := []struct {
		name  string
		diags []ast.Diagnostic
		want  string
	}{
		{"none", nil, ""},
		{"one", []ast.Diagnostic{a}, "Found 1 error in a.d.ts"},
		{"same file", []ast.Diagnostic{a, a}, "Found 2 errors in the same file, starting at: a.d.ts"},
		{"many files", []ast.Diagnostic{a, b}, "Found 2 errors in 2 files."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteErrorSummary(&buf, tt.diags, "/project")
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, buf.String())
			}
		})
	}
}

func TestIsPrettyOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")
	if IsPrettyOutput() {
		t.Error("NO_COLOR should disable pretty output")
	}
	t.Setenv("NO_COLOR", "")
	if !IsPrettyOutput() {
		t.Error("FORCE_COLOR should enable pretty output")
	}
}
