package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/config"
	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
	sbio "github.com/matzehuels/sbhasm/pkg/io"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
	"github.com/matzehuels/sbhasm/pkg/render/pathviz"
	"github.com/matzehuels/sbhasm/pkg/runlog"
)

// assembleOpts holds the command-line flags for the assemble command.
type assembleOpts struct {
	search   pipeline.Options
	cache    cacheOpts
	logPath  string // run-log file
	noLog    bool   // skip the run log entirely
	mongoURI string // optional MongoDB run log
	mongoDB  string
	mongoCol string
	output   string // result JSON file
	diagram  string // path diagram output (.dot, .svg, .pdf, .png)
	detailed bool   // offsets and indices in diagram labels
	unused   bool   // draw fragments missing from the path
	jsonOut  bool   // print the result as JSON instead of the report
	tui      bool   // live annealing view
}

// assembleCommand creates the assemble command.
func (c *CLI) assembleCommand() *cobra.Command {
	var opts assembleOpts

	cmd := &cobra.Command{
		Use:   "assemble [fragments.txt]",
		Short: "Reconstruct a sequence from a fragment file",
		Long: `Reconstruct a sequence from a file with one fragment per line.

All fragments must have the same length. The search maximizes the number of
fragments that occur in the result while keeping it within --max-len.

Each run is appended to a log file (results.txt by default) as
"source | elapsed_seconds | score", and optionally stored in MongoDB.
Explicit flags override values from the config file.`,
		Example: `  # Assemble with a 209 character budget
  sbhasm assemble reads.txt --max-len 209

  # Reproducible run with a longer search and a path diagram
  sbhasm assemble reads.txt --max-len 209 --seed 7 --iterations 500000 --dot path.svg

  # Watch the annealing live
  sbhasm assemble reads.txt --max-len 209 --tui`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.checkFlags(cmd.Flags().Changed); err != nil {
				return err
			}
			opts.mergeConfig(cfg, cmd.Flags().Changed)
			return c.runAssemble(cmd.Context(), args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.search.MaxLen, "max-len", 0, "maximum length of the assembled sequence (required)")
	f.IntVar(&opts.search.Restarts, "restarts", pipeline.DefaultRestarts, "greedy restarts from distinct start fragments (must be positive)")
	f.IntVar(&opts.search.Iterations, "iterations", pipeline.DefaultIterations, "annealing iterations (must be positive)")
	f.Uint64Var(&opts.search.Seed, "seed", pipeline.DefaultSeed, "random seed")
	f.Float64Var(&opts.search.InitialTemp, "t0", 0, "initial annealing temperature (default 1)")
	f.Float64Var(&opts.search.Cooling, "alpha", 0, "geometric cooling factor per iteration (default 0.99995)")
	f.Float64Var(&opts.search.MinTemp, "t-min", 0, "temperature floor (default 1e-4)")
	f.IntVar(&opts.search.Workers, "workers", 0, "parallel workers for overlaps and restarts (default: all CPUs)")
	f.BoolVar(&opts.search.Refresh, "refresh", false, "ignore cached results (still writes them)")

	f.StringVar(&opts.logPath, "log", runlog.DefaultPath, "run log file")
	f.BoolVar(&opts.noLog, "no-log", false, "do not record the run")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "also record the run in MongoDB")

	f.StringVar(&opts.diagram, "dot", "", "write the fragment path diagram (.dot, .svg, .pdf or .png)")
	f.BoolVar(&opts.detailed, "detailed", false, "show indices and offsets in the diagram")
	f.BoolVar(&opts.unused, "show-unused", false, "include unused fragments in the diagram")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	f.StringVarP(&opts.output, "output", "o", "", "save the result as JSON (for 'sbhasm diagram')")
	f.BoolVar(&opts.tui, "tui", false, "show a live view of the annealing search")

	f.BoolVar(&opts.cache.noCache, "no-cache", false, "disable caching")
	f.StringVar(&opts.cache.redisURL, "redis-url", "", "use Redis as the cache backend")

	_ = cmd.MarkFlagRequired("max-len")

	return cmd
}

// checkFlags rejects explicit counts the pipeline would otherwise read as
// "use the default".
func (o *assembleOpts) checkFlags(changed func(string) bool) error {
	if changed("iterations") && o.search.Iterations <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "--iterations must be positive, got %d", o.search.Iterations)
	}
	if changed("restarts") && o.search.Restarts <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "--restarts must be positive, got %d", o.search.Restarts)
	}
	return nil
}

// mergeConfig copies config values into opts for every flag that was not
// set explicitly. changed reports whether a flag was given.
func (o *assembleOpts) mergeConfig(cfg *config.Config, changed func(string) bool) {
	set := func(flag string, apply func()) {
		if !changed(flag) {
			apply()
		}
	}
	if v := cfg.Search.Restarts; v != 0 {
		set("restarts", func() { o.search.Restarts = v })
	}
	if v := cfg.Search.Iterations; v != 0 {
		set("iterations", func() { o.search.Iterations = v })
	}
	if v := cfg.Search.Seed; v != 0 {
		set("seed", func() { o.search.Seed = v })
	}
	if v := cfg.Search.Workers; v != 0 {
		set("workers", func() { o.search.Workers = v })
	}
	if v := cfg.Anneal.InitialTemperature; v != 0 {
		set("t0", func() { o.search.InitialTemp = v })
	}
	if v := cfg.Anneal.Cooling; v != 0 {
		set("alpha", func() { o.search.Cooling = v })
	}
	if v := cfg.Anneal.MinTemperature; v != 0 {
		set("t-min", func() { o.search.MinTemp = v })
	}
	if v := cfg.Log.Path; v != "" {
		set("log", func() { o.logPath = v })
	}
	if v := cfg.Log.MongoURI; v != "" {
		set("mongo-uri", func() { o.mongoURI = v })
	}
	o.mongoDB = cfg.Log.MongoDatabase
	o.mongoCol = cfg.Log.MongoCollection
	o.cache.fromConfig(cfg, changed)
}

// runAssemble loads the fragments, runs the pipeline and reports the result.
func (c *CLI) runAssemble(ctx context.Context, input string, opts *assembleOpts) error {
	set, err := fragment.Import(input)
	if err != nil {
		return fmt.Errorf("load fragments %s: %w", input, err)
	}
	c.Logger.Debug("loaded fragments", "file", input, "count", set.Len(), "width", set.Width())

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	search := opts.search
	search.Logger = c.Logger

	var res *pipeline.Result
	if opts.tui {
		res, err = c.runWithTUI(ctx, input, runner, set, search)
	} else {
		res, err = c.runWithSpinner(ctx, runner, set, search)
	}
	if err != nil && (res == nil || !isCancellation(err)) {
		return err
	}
	interrupted := err != nil

	if opts.jsonOut {
		if err := sbio.WriteResult(res, os.Stdout); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	} else {
		if interrupted {
			printWarning("Interrupted after %d iterations, showing best so far", res.Iterations)
		}
		printReport(input, res, search.MaxLen)
	}
	if interrupted {
		// A stop from the live view is not a failure; a signal is.
		return ctx.Err()
	}

	if !opts.noLog {
		c.recordRun(ctx, input, res, search, opts)
	}

	if opts.output != "" {
		if err := sbio.ExportResult(res, opts.output); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if !opts.jsonOut {
			printFile(opts.output)
		}
	}

	if opts.diagram != "" {
		m, err := runner.Overlaps(ctx, set, search)
		if err != nil {
			return fmt.Errorf("diagram: %w", err)
		}
		popts := pathviz.Options{Detailed: opts.detailed, ShowUnused: opts.unused}
		if err := writeDiagram(ctx, assembly.New(set, m), res.Order, opts.diagram, popts); err != nil {
			return err
		}
		if !opts.jsonOut {
			printFile(opts.diagram)
		}
	}
	return nil
}

// isCancellation reports whether err comes from a cancelled or expired context.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// runWithSpinner runs the pipeline behind a spinner showing annealing progress.
func (c *CLI) runWithSpinner(ctx context.Context, runner *pipeline.Runner, set fragment.Set, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Assembling %d fragments...", set.Len()))
	opts.Progress = spinner.Progress()
	spinner.Start()

	res, err := runner.Execute(ctx, set, opts)
	if err != nil && ctx.Err() == nil {
		spinner.StopWithError("Assembly failed")
		return nil, err
	}
	spinner.Stop()
	return res, err
}

// recordRun writes the run to the configured sinks. Failures are warnings.
func (c *CLI) recordRun(ctx context.Context, source string, res *pipeline.Result, search pipeline.Options, opts *assembleOpts) {
	sinks := runlog.Multi{runlog.NewFileSink(opts.logPath)}
	if opts.mongoURI != "" {
		ms, err := runlog.NewMongoSink(ctx, runlog.MongoOptions{
			URI:        opts.mongoURI,
			Database:   opts.mongoDB,
			Collection: opts.mongoCol,
		})
		if err != nil {
			c.Logger.Warn("mongodb run log disabled", "err", err)
			printWarning("Could not connect to MongoDB run log")
		} else {
			sinks = append(sinks, ms)
		}
	}
	defer sinks.Close()

	rec := runlog.NewRecord(source)
	rec.Elapsed = res.Stats.Elapsed
	rec.Score = res.Score
	rec.Length = res.Length
	rec.MaxLen = search.MaxLen
	rec.Fragments = res.Fragments
	rec.Seed = cmp.Or(search.Seed, pipeline.DefaultSeed)
	rec.Sequence = res.Sequence

	if err := sinks.Write(ctx, rec); err != nil {
		c.Logger.Warn("run log write failed", "err", err)
		printWarning("Could not record run: %v", err)
		return
	}
	c.Logger.Debug("recorded run", "id", rec.ID, "log", opts.logPath)
}

// writeDiagram renders order as a path diagram at path. The format
// follows the file extension.
func writeDiagram(ctx context.Context, asm *assembly.Assembler, order []int, path string, opts pathviz.Options) error {
	dot := pathviz.ToDOT(asm, order, opts)
	data, err := pathviz.Render(ctx, dot, pathviz.FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("diagram: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write diagram %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("wrote diagram", "path", path, "nodes", len(order))
	return nil
}
