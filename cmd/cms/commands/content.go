package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/spf13/cobra"
)

// queryFlags holds the read query flags. Only flags the user set are sent.
type queryFlags struct {
	fields    []string
	draftKey  string
	globalKey bool
	depth     int
	limit     int
	offset    int
	orders    string
	q         string
	filters   string
	ids       []string
}

func (f *queryFlags) addReadFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return (comma separated)")
	cmd.Flags().StringVar(&f.draftKey, "draft-key", "", "draft key for unpublished content")
	cmd.Flags().BoolVar(&f.globalKey, "global-key", false, "send the configured global draft key")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "relation expansion depth")
}

func (f *queryFlags) addListFlags(cmd *cobra.Command) {
	f.addReadFlags(cmd)
	cmd.Flags().IntVar(&f.limit, "limit", constants.StandardPageSize, "number of records to return")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of records to skip")
	cmd.Flags().StringVar(&f.orders, "orders", "", "sort order, e.g. -publishedAt")
	cmd.Flags().StringVar(&f.q, "q", "", "full-text search term")
	cmd.Flags().StringVar(&f.filters, "filters", "", "filter expression, e.g. category[equals]news")
	cmd.Flags().StringSliceVar(&f.ids, "ids", nil, "record ids to return (comma separated)")
}

// build converts the flags the user set into query options.
func (f *queryFlags) build(cmd *cobra.Command) *cms.QueryOptions {
	opts := cms.NewQueryOptions()
	changed := cmd.Flags().Changed

	if changed("draft-key") {
		opts.WithDraftKey(f.draftKey)
	}

	if changed("limit") {
		opts.WithLimit(f.limit)
	}

	if changed("offset") {
		opts.WithOffset(f.offset)
	}

	if changed("orders") {
		opts.WithOrders(f.orders)
	}

	if changed("q") {
		opts.WithQ(f.q)
	}

	if changed("fields") {
		opts.WithFields(f.fields...)
	}

	if changed("ids") {
		opts.WithIDs(f.ids...)
	}

	if changed("filters") {
		opts.WithFilters(f.filters)
	}

	if changed("depth") {
		opts.WithDepth(f.depth)
	}

	if f.globalKey {
		opts.WithGlobalKey(true)
	}

	return opts
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "get ENDPOINT [ID]",
		Short: "Get a record",
		Long:  "Fetch one record by id, or the single record of an object endpoint when ID is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 2 {
				id = args[1]
			}

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			res := sess.client.Get(context.Background(), args[0], id, flags.build(cmd))

			record, ok := res.Lenient()
			if !ok {
				return fmt.Errorf("failed to get content: %w", res.Error())
			}

			return renderRecord(cmd.OutOrStdout(), record)
		},
	}

	flags.addReadFlags(cmd)

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		flags    = &queryFlags{}
		allPages bool
	)

	cmd := &cobra.Command{
		Use:     "list ENDPOINT",
		Aliases: []string{"ls"},
		Short:   "List records",
		Long:    "List one page of an endpoint's records, or every record with --all",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := args[0]

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := context.Background()
			opts := flags.build(cmd)

			if allPages {
				records, err := cms.ListAll(ctx, sess.client, endpoint, opts, constants.DefaultPageSize)
				if err != nil {
					return fmt.Errorf("failed to list content: %w", err)
				}

				return renderList(cmd.OutOrStdout(), &cms.ListResult{
					Contents:   records,
					TotalCount: len(records),
					Limit:      len(records),
				})
			}

			res := sess.client.List(ctx, endpoint, opts)

			page, ok := res.Lenient()
			if !ok {
				return fmt.Errorf("failed to list content: %w", res.Error())
			}

			return renderList(cmd.OutOrStdout(), &page)
		},
	}

	flags.addListFlags(cmd)
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch every page")

	return cmd
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var data, dataFile string

	cmd := &cobra.Command{
		Use:   "create ENDPOINT",
		Short: "Create a record",
		Long:  "Create a record with a server-assigned id. Prints the status code and the new id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), data, dataFile)
			if err != nil {
				return err
			}

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			return renderStatus(cmd, "create", sess.client.Create(context.Background(), args[0], body))
		},
	}

	addBodyFlags(cmd, &data, &dataFile)

	return cmd
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand() *cobra.Command {
	var data, dataFile string

	cmd := &cobra.Command{
		Use:   "replace ENDPOINT [ID]",
		Short: "Replace a record",
		Long:  "Create or fully replace the record at ID. Omit ID for an object endpoint.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 2 {
				id = args[1]
			}

			body, err := readBody(cmd.InOrStdin(), data, dataFile)
			if err != nil {
				return err
			}

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			return renderStatus(cmd, "replace", sess.client.Replace(context.Background(), args[0], id, body))
		},
	}

	addBodyFlags(cmd, &data, &dataFile)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var data, dataFile string

	cmd := &cobra.Command{
		Use:   "update ENDPOINT ID",
		Short: "Update a record",
		Long:  "Change the given fields of the record at ID, leaving the others untouched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), data, dataFile)
			if err != nil {
				return err
			}

			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			return renderStatus(cmd, "update", sess.client.Update(context.Background(), args[0], args[1], body))
		},
	}

	addBodyFlags(cmd, &data, &dataFile)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ENDPOINT ID",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Long:    "Delete the record at ID. Prints the status code and whether the record was deleted.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			return renderStatus(cmd, "delete", sess.client.Delete(context.Background(), args[0], args[1]))
		},
	}
}
