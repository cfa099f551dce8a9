package anneal_test

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/sbhasm/pkg/core/anneal"
	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
)

func Example() {
	set, _ := fragment.New([]string{"AAAB", "AABC", "ABCD"})
	m, _ := overlap.Compute(context.Background(), set.Strings(), 1)
	asm := assembly.New(set, m)

	opt, _ := anneal.New(asm, anneal.Options{MaxLen: 6, Iterations: 2000})
	seed := anneal.State{Order: []int{2}, Score: 1, Length: 4}
	res, _ := opt.Run(context.Background(), seed, rand.New(rand.NewPCG(42, 42^0xdeadbeef)))

	fmt.Println(res.Sequence, res.Best.Score)
	// Output: AAABCD 3
}
