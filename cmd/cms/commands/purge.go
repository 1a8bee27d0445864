package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// PurgeEntry is the outcome of deleting one record.
type PurgeEntry struct {
	ID     string `json:"id"              yaml:"id"`
	Result string `json:"result"          yaml:"result"`
	Status int    `json:"status"          yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// PurgeSummary reports a purge run.
type PurgeSummary struct {
	Endpoint string       `json:"endpoint" yaml:"endpoint"`
	Deleted  int          `json:"deleted"  yaml:"deleted"`
	Failed   int          `json:"failed"   yaml:"failed"`
	Entries  []PurgeEntry `json:"entries"  yaml:"entries"`
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand() *cobra.Command {
	var (
		force       bool
		concurrency int
		rateLimit   float64
		filters     string
	)

	cmd := &cobra.Command{
		Use:   "purge ENDPOINT",
		Short: "Delete every record of an endpoint",
		Long: `Delete every record of an endpoint, or only those matching --filters.

Records are listed page by page and deleted concurrently. Requires --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return constants.ErrConfirmationRequired
			}

			endpoint := args[0]

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := context.Background()

			opts := cms.NewQueryOptions().WithFields(cms.FieldID)
			if filters != "" {
				opts.WithFilters(filters)
			}

			records, err := cms.ListAll(ctx, sess.client, endpoint, opts, constants.DefaultPageSize)
			if err != nil {
				return fmt.Errorf("failed to list records to purge: %w", err)
			}

			ids := make([]string, 0, len(records))
			for _, record := range records {
				ids = append(ids, record.ID())
			}

			executor := cms.NewBatchExecutor(sess.client, concurrency)
			executor.SetRateLimit(rateLimit)

			results := executor.DeleteAll(ctx, endpoint, ids)
			summary := summarizePurge(endpoint, results)

			err = renderOutput(cmd.OutOrStdout(), summary, func(w io.Writer) error {
				return renderPurgeTable(w, summary)
			})
			if err != nil {
				return err
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%w: %d of %d deletes failed", constants.ErrPartialBatchFailure, summary.Failed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "maximum concurrent deletes")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "maximum deletes started per second (0 for no limit)")
	cmd.Flags().StringVar(&filters, "filters", "", "only purge records matching this filter expression")

	return cmd
}

func summarizePurge(endpoint string, results []cms.BatchResult) *PurgeSummary {
	summary := &PurgeSummary{Endpoint: endpoint, Entries: make([]PurgeEntry, 0, len(results))}

	for _, result := range results {
		entry := PurgeEntry{
			ID:     result.ID,
			Result: formatKind(result.Kind),
			Status: result.StatusCode,
		}

		if result.Success {
			summary.Deleted++
		} else {
			summary.Failed++

			if result.Error != nil {
				entry.Error = result.Error.Error()
			}
		}

		summary.Entries = append(summary.Entries, entry)
	}

	return summary
}

func renderPurgeTable(w io.Writer, summary *PurgeSummary) error {
	if len(summary.Entries) == 0 {
		_, err := fmt.Fprintf(w, "No records found in %s\n", summary.Endpoint)

		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Result", "Status", "Error")

	for _, entry := range summary.Entries {
		_ = table.Append(entry.ID, entry.Result, strconv.Itoa(entry.Status), entry.Error)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err = fmt.Fprintf(w, "\n%s Deleted %d, %s failed %d\n",
		constants.CheckMarkSymbol, summary.Deleted, constants.CrossMarkSymbol, summary.Failed)

	return err
}
