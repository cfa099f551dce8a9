package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/sbhasm/pkg/core/overlap"
)

func TestRenderMatrix(t *testing.T) {
	m, err := overlap.FromRows([][]int{
		{0, 3, 2},
		{1, 0, 3},
		{0, 1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := renderMatrix(m, 0)
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("renderMatrix() has %d lines:\n%s", len(lines), out)
	}
	for _, want := range []string{"0", "1", "2", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderMatrix() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMatrixLimit(t *testing.T) {
	m, err := overlap.FromRows([][]int{
		{0, 7, 0},
		{0, 0, 0},
		{9, 0, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := renderMatrix(m, 2)
	if !strings.Contains(out, "7") {
		t.Errorf("limited matrix should keep cell (0,1):\n%s", out)
	}
	if strings.Contains(out, "9") {
		t.Errorf("limited matrix should drop row 2:\n%s", out)
	}
}
