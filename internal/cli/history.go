package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/runlog"
)

// historyCommand creates the history command listing runs stored in MongoDB.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		mongoURI string
		source   string
		limit    int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the MongoDB run log",
		Example: `  sbhasm history --mongo-uri mongodb://localhost:27017
  sbhasm history --source reads.txt --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := runlog.MongoOptions{
				URI:        mongoURI,
				Database:   cfg.Log.MongoDatabase,
				Collection: cfg.Log.MongoCollection,
			}
			if opts.URI == "" {
				opts.URI = cfg.Log.MongoURI
			}
			if opts.URI == "" {
				return fmt.Errorf("no MongoDB run log configured (use --mongo-uri or log.mongo_uri)")
			}
			return c.runHistory(cmd.Context(), opts, source, limit)
		},
	}

	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&source, "source", "", "only runs of this fragment file")
	cmd.Flags().Int64Var(&limit, "limit", 20, "maximum number of runs")

	return cmd
}

func (c *CLI) runHistory(ctx context.Context, opts runlog.MongoOptions, source string, limit int64) error {
	sink, err := runlog.NewMongoSink(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect run log: %w", err)
	}
	defer sink.Close()

	recs, err := sink.Recent(ctx, source, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		printInfo("No runs recorded")
		return nil
	}
	fmt.Println(renderHistory(recs))
	return nil
}

// renderHistory renders run records as a table, newest first.
func renderHistory(recs []runlog.Record) string {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			strconv.Itoa(r.Score),
			fmt.Sprintf("%d/%d", r.Length, r.MaxLen),
			r.Elapsed.Round(time.Millisecond).String(),
			strconv.FormatUint(r.Seed, 10),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("When", "Source", "Score", "Length", "Elapsed", "Seed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
