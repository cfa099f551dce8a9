package pathviz_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
	"github.com/matzehuels/sbhasm/pkg/render/pathviz"
)

func ExampleToDOT() {
	set, _ := fragment.New([]string{"AAAB", "AABC", "ABCD"})
	m, _ := overlap.Compute(context.Background(), set.Strings(), 1)
	asm := assembly.New(set, m)

	fmt.Print(pathviz.ToDOT(asm, []int{0, 2}, pathviz.Options{}))
	// Output:
	// digraph G {
	//   rankdir=LR;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontname="monospace", fontsize=14];
	//   edge [fontsize=11];
	//
	//   f0 [label="AAAB"];
	//   f2 [label="ABCD"];
	//
	//   f0 -> f2 [label="2", penwidth=2.50];
	// }
}
