package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbdesigner/internal/ddlexec"
	"dbdesigner/internal/designer"
	"dbdesigner/internal/models"
	"dbdesigner/internal/sqlgen"
)

type applyOptions struct {
	dialect string
	dsn     string
}

func newApplyCommand() *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <design-file>",
		Short: "Create the design's tables in a live database",
		Long: `Execute the generated statements, in order, against a PostgreSQL,
MySQL or SQLite database.

Unresolved relationships are skipped. SQLite cannot add a foreign key to an
existing table, so foreign keys are skipped there too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dialect, "dialect", "d", "", "Database dialect (postgresql, mysql, sqlite)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "Connection string for the target database")
	_ = cmd.MarkFlagRequired("dialect")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

func runApply(cmd *cobra.Command, path string, opts *applyOptions) error {
	dialect, err := models.ParseDialect(opts.dialect)
	if err != nil {
		return err
	}

	design, err := designer.LoadFile(path)
	if err != nil {
		return err
	}

	exec, err := ddlexec.Open(cmd.Context(), dialect, opts.dsn)
	if err != nil {
		return err
	}
	defer exec.Close()

	result, err := exec.Apply(cmd.Context(), *design)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	for _, stmt := range result.Skipped {
		if stmt.Kind == sqlgen.KindWarning {
			printWarning(cmd, "skipped: %s", stmt.SQL)
		} else {
			printWarning(cmd, "skipped %s on %s: %s", stmt.Kind, dialect.Label(), stmt.SQL)
		}
	}
	printSuccess(cmd, "Applied %d statement(s) to %s", len(result.Executed), dialect.Label())

	tables, err := exec.Tables(cmd.Context())
	if err != nil {
		return err
	}
	for _, table := range tables {
		columns, err := exec.Columns(cmd.Context(), table)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d columns)\n", table, len(columns))
	}
	return nil
}
