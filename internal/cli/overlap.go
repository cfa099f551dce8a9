package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// overlapCommand creates the overlap command for inspecting overlap matrices.
func (c *CLI) overlapCommand() *cobra.Command {
	var (
		workers int
		limit   int
		jsonOut bool
		cacheO  cacheOpts
	)

	cmd := &cobra.Command{
		Use:   "overlap [fragments.txt]",
		Short: "Print the pairwise overlap matrix (debug tool)",
		Long: `Print the pairwise overlap matrix of a fragment file.

Cell (i, j) is the length of the longest suffix of fragment i that is also a
prefix of fragment j. The diagonal is always 0.`,
		Example: `  # Table of the first 12 fragments
  sbhasm overlap reads.txt --limit 12

  # Full matrix as JSON
  sbhasm overlap reads.txt --json > matrix.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOverlap(cmd.Context(), args[0], workers, limit, jsonOut, cacheO)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default: all CPUs)")
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many rows and columns (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the matrix as JSON")
	cmd.Flags().BoolVar(&cacheO.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runOverlap computes (or loads) the matrix and prints it.
func (c *CLI) runOverlap(ctx context.Context, input string, workers, limit int, jsonOut bool, cacheO cacheOpts) error {
	set, err := fragment.Import(input)
	if err != nil {
		return fmt.Errorf("load fragments %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cacheO)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	m, hit, err := runner.OverlapsWithCacheInfo(ctx, set, pipeline.Options{Workers: workers, Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("compute overlaps: %w", err)
	}
	prog.done(fmt.Sprintf("Computed overlaps for %d fragments", set.Len()))
	c.Logger.Debug("overlap matrix", "cached", hit)

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(m)
	}

	fmt.Println(renderMatrix(m, limit))
	if limit > 0 && m.Size() > limit {
		printDetail("showing %d of %d fragments", limit, m.Size())
	}
	printNewline()
	printNextStep("Assemble", fmt.Sprintf("%s assemble %s --max-len N", appName, input))
	return nil
}

// renderMatrix renders the top-left limit×limit block of m as a table.
func renderMatrix(m *overlap.Matrix, limit int) string {
	n := m.Size()
	if limit > 0 {
		n = min(n, limit)
	}

	headers := make([]string, n+1)
	for j := range n {
		headers[j+1] = strconv.Itoa(j)
	}
	rows := make([][]string, n)
	for i := range n {
		row := make([]string, n+1)
		row[0] = strconv.Itoa(i)
		for j := range n {
			row[j+1] = strconv.Itoa(m.At(i, j))
		}
		rows[i] = row
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1, col == 0:
				return headerStyle
			case row == col-1:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
