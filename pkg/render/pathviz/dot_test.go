package pathviz

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

func newAssembler(t *testing.T, frags ...string) *assembly.Assembler {
	t.Helper()
	set, err := fragment.New(frags)
	if err != nil {
		t.Fatal(err)
	}
	m, err := overlap.Compute(context.Background(), set.Strings(), 1)
	if err != nil {
		t.Fatal(err)
	}
	return assembly.New(set, m)
}

func TestToDOT_Chain(t *testing.T) {
	asm := newAssembler(t, "AAAB", "AABC", "ABCD")
	dot := ToDOT(asm, []int{0, 1, 2}, Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=LR",
		`f0 [label="AAAB"]`,
		`f2 [label="ABCD"]`,
		`f0 -> f1 [label="3", penwidth=3.25]`,
		`f1 -> f2 [label="3"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "cluster_unused") {
		t.Error("unused cluster should be off by default")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	asm := newAssembler(t, "AAAB", "AABC", "ABCD")
	dot := ToDOT(asm, []int{0, 2}, Options{Detailed: true})

	// ABCD overlaps AAAB by 2, so it starts at offset 2.
	if !strings.Contains(dot, `label="ABCD\n#2 @2"`) {
		t.Errorf("ToDOT() detailed label missing offset:\n%s", dot)
	}
}

func TestToDOT_ZeroOverlapDashed(t *testing.T) {
	asm := newAssembler(t, "AAAA", "CCCC")
	dot := ToDOT(asm, []int{0, 1}, Options{})

	if !strings.Contains(dot, `f0 -> f1 [label="0", penwidth=1.00, style=dashed, color=red]`) {
		t.Errorf("zero overlap edge not highlighted:\n%s", dot)
	}
}

func TestToDOT_ShowUnused(t *testing.T) {
	asm := newAssembler(t, "AAAB", "AABC", "ABCD")
	dot := ToDOT(asm, []int{0, 1}, Options{ShowUnused: true})

	if !strings.Contains(dot, "subgraph cluster_unused") {
		t.Fatalf("missing unused cluster:\n%s", dot)
	}
	if !strings.Contains(dot, `f2 [label="ABCD", fillcolor=lightgrey`) {
		t.Errorf("unused fragment not greyed out:\n%s", dot)
	}

	full := ToDOT(asm, []int{0, 1, 2}, Options{ShowUnused: true})
	if strings.Contains(full, "cluster_unused") {
		t.Error("no cluster expected when every fragment is used")
	}
}

func TestToDOT_Empty(t *testing.T) {
	asm := newAssembler(t, "AAAB")
	dot := ToDOT(asm, nil, Options{})
	if strings.Contains(dot, "->") || strings.Contains(dot, "f0") {
		t.Errorf("empty order should produce an empty graph:\n%s", dot)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out.svg", FormatSVG},
		{"OUT.PNG", FormatPNG},
		{"dir/out.pdf", FormatPDF},
		{"out.dot", FormatDOT},
		{"out.gv", FormatDOT},
		{"out", FormatDOT},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRender_DOTPassthrough(t *testing.T) {
	out, err := Render(context.Background(), "digraph G {}\n", FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "digraph G {}\n" {
		t.Errorf("Render(dot) = %q", out)
	}
}

func TestRender_Unsupported(t *testing.T) {
	_, err := Render(context.Background(), "digraph G {}", "gif")
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
