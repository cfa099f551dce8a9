package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	sbio "github.com/matzehuels/sbhasm/pkg/io"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
	"github.com/matzehuels/sbhasm/pkg/render/pathviz"
)

// diagramCommand creates the diagram command for rendering saved results.
func (c *CLI) diagramCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pathviz.Options
	)

	cmd := &cobra.Command{
		Use:   "diagram [result.json] [fragments.txt]",
		Short: "Render a saved result as a fragment path diagram",
		Long: `Render a saved result as a fragment path diagram.

The result file is produced by 'assemble -o result.json'. The fragment file
must be the one the result was computed from; this is checked by fingerprint.
The output format follows the extension: .dot, .svg, .pdf or .png.`,
		Example: `  sbhasm assemble reads.txt --max-len 209 -o result.json
  sbhasm diagram result.json reads.txt -o path.svg --detailed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagram(cmd.Context(), args[0], args[1], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <result>.svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show indices and offsets")
	cmd.Flags().BoolVar(&opts.ShowUnused, "show-unused", false, "include unused fragments")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDiagram loads the result and fragments and writes the diagram.
func (c *CLI) runDiagram(ctx context.Context, resultPath, input, output string, noCache bool, opts pathviz.Options) error {
	res, err := sbio.ImportResult(resultPath)
	if err != nil {
		return fmt.Errorf("load result: %w", err)
	}
	set, err := fragment.Import(input)
	if err != nil {
		return fmt.Errorf("load fragments %s: %w", input, err)
	}
	if err := sbio.CheckFragments(res, set); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cacheOpts{noCache: noCache})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	m, err := runner.Overlaps(ctx, set, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("compute overlaps: %w", err)
	}

	if output == "" {
		output = strings.TrimSuffix(resultPath, filepath.Ext(resultPath)) + ".svg"
	}
	if err := writeDiagram(ctx, assembly.New(set, m), res.Order, output, opts); err != nil {
		return err
	}

	printSuccess("Diagram complete")
	printFile(output)
	return nil
}
