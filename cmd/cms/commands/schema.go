package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with endpoint schemas",
		Long:  "Validate schema files and check request bodies against them before sending",
	}

	cmd.AddCommand(newSchemaValidateCommand())
	cmd.AddCommand(newSchemaCheckCommand())

	return cmd
}

func newSchemaValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a schema file",
		Long:  "Parse a YAML or TOML schema file and list the endpoints and fields it defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := cms.LoadSchemaFile(args[0])
			if err != nil {
				return err
			}

			ordered := make([]*cms.Schema, 0, len(schemas))
			for _, endpoint := range schemas.Endpoints() {
				ordered = append(ordered, schemas[endpoint])
			}

			return renderOutput(cmd.OutOrStdout(), ordered, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.Header("Endpoint", "Field", "Type", "Required")

				for _, schema := range ordered {
					for _, field := range schema.Fields {
						_ = table.Append(schema.Endpoint, field.Name, string(field.Type), strconv.FormatBool(field.Required))
					}
				}

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				_, err = fmt.Fprintf(w, "\n%s %d endpoint(s) valid\n", constants.CheckMarkSymbol, len(ordered))

				return err
			})
		},
	}
}

func newSchemaCheckCommand() *cobra.Command {
	var (
		data      string
		dataFile  string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "check ENDPOINT",
		Short: "Check a body against a schema",
		Long:  "Validate a create, replace or update body against the schema file given by --schema, without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaFile := viper.GetString(KeySchema)
			if schemaFile == "" {
				return constants.ErrSchemaFileRequired
			}

			schemas, err := cms.LoadSchemaFile(schemaFile)
			if err != nil {
				return err
			}

			schema, err := schemas.Lookup(args[0])
			if err != nil {
				return err
			}

			body, err := readBody(cmd.InOrStdin(), data, dataFile)
			if err != nil {
				return err
			}

			op := cms.Operation(operation)
			switch op {
			case cms.OperationCreate, cms.OperationReplace, cms.OperationUpdate:
			default:
				return fmt.Errorf("%w: %s", cms.ErrUnsupportedOperation, operation)
			}

			err = schema.ValidateBody(op, body)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s body is valid for %s %s\n", constants.CheckMarkSymbol, op, schema.Endpoint)

			return err
		},
	}

	addBodyFlags(cmd, &data, &dataFile)
	cmd.Flags().StringVar(&operation, "operation", string(cms.OperationCreate), "operation to check for (create, replace, update)")

	return cmd
}
