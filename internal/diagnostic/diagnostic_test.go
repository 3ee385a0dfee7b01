package diagnostic

import (
	"fmt"
	"sync"
	"testing"
)

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{
			Diagnostic{Severity: SeverityInfo, Category: CategoryModule, File: "src/api.d.ts", Line: 3, Message: `cannot resolve module "./missing"`},
			`src/api.d.ts:3: info [module] cannot resolve module "./missing"`,
		},
		{
			Diagnostic{Severity: SeverityWarning, Category: CategoryEmit, File: "src/api.d.ts", Message: "output unchanged"},
			"src/api.d.ts: warning [emit] output unchanged",
		},
		{
			Diagnostic{Severity: SeverityError, Message: "boom"},
			"error boom",
		},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCollector_MinimumSeverity(t *testing.T) {
	c := NewCollector(SeverityWarning)
	c.Infof(CategoryExpansion, "mod.d.ts", 5, "constraint of %s is not enumerable", "T")
	c.Warnf(CategoryEmit, "mod.d.ts", 0, "slow write")
	c.Report(SeverityError, CategoryEmit, "", 0, "disk full")

	if got := len(c.Diagnostics()); got != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", got)
	}
	if c.Count(SeverityInfo) != 0 {
		t.Errorf("info should have been dropped")
	}
	if c.Count(SeverityWarning) != 1 || c.Count(SeverityError) != 1 {
		t.Errorf("unexpected counts: %s", c.Summary())
	}
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(SeverityInfo)
	if c.Summary() != "no issues" {
		t.Errorf("empty collector summary = %q", c.Summary())
	}
	c.Warnf(CategoryResolution, "a.d.ts", 1, "w1")
	c.Infof(CategoryModule, "b.d.ts", 2, "n1")
	c.Infof(CategoryModule, "b.d.ts", 3, "n2")
	if got, want := c.Summary(), "1 warning(s), 2 note(s)"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestCollector_ByCategory(t *testing.T) {
	c := NewCollector(SeverityInfo)
	c.Infof(CategoryModule, "a.d.ts", 1, "m")
	c.Infof(CategoryExpansion, "a.d.ts", 2, "e1")
	c.Infof(CategoryExpansion, "a.d.ts", 3, "e2")
	got := c.ByCategory()
	if got[CategoryModule] != 1 || got[CategoryExpansion] != 2 || len(got) != 2 {
		t.Errorf("ByCategory() = %v", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Infof(CategoryResolution, "", 0, "test")
	c.Warnf(CategoryEmit, "", 0, "test")
	if c.Diagnostics() != nil {
		t.Error("nil collector should have no diagnostics")
	}
	if c.Count(SeverityInfo) != 0 || len(c.ByCategory()) != 0 {
		t.Error("nil collector should count nothing")
	}
	if c.Summary() != "no issues" {
		t.Errorf("nil collector summary = %q", c.Summary())
	}
}

func TestCollector_OrderedByFileThenLine(t *testing.T) {
	c := NewCollector(SeverityInfo)
	c.Infof(CategoryModule, "b.d.ts", 2, "b2")
	c.Infof(CategoryModule, "a.d.ts", 9, "a9")
	c.Infof(CategoryModule, "", 0, "global")
	c.Infof(CategoryModule, "a.d.ts", 1, "a1")
	c.Infof(CategoryModule, "a.d.ts", 1, "a1 again")

	var got []string
	for _, d := range c.Diagnostics() {
		got = append(got, d.Message)
	}
	want := []string{"global", "a1", "a1 again", "a9", "b2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCollector_ConcurrentReports(t *testing.T) {
	c := NewCollector(SeverityInfo)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Infof(CategoryModule, fmt.Sprintf("m%02d.d.ts", i), i, "module %d", i)
		}(i)
	}
	wg.Wait()
	diags := c.Diagnostics()
	if len(diags) != 32 {
		t.Fatalf("expected 32 diagnostics, got %d", len(diags))
	}
	for i := 1; i < len(diags); i++ {
		if diags[i-1].File > diags[i].File {
			t.Fatalf("diagnostics not ordered by file: %q before %q", diags[i-1].File, diags[i].File)
		}
	}
	if got := c.Summary(); got != "32 note(s)" {
		t.Errorf("Summary() = %q", got)
	}
}
