package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dbdesigner/internal/designer"
	"dbdesigner/internal/models"
	"dbdesigner/internal/sqlgen"
	"dbdesigner/internal/watch"
)

type generateOptions struct {
	dialect string
	out     string
	watch   bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <design-file>",
		Short: "Print the DDL script for a design",
		Long: `Render the CREATE TABLE and foreign key statements for a design
stored as JSON or YAML.

Relationships whose tables or columns cannot be resolved are written as
warning comments instead of statements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dialect, "dialect", "d", string(models.DialectGeneral), "Target dialect (general, postgresql, mysql, sqlite, sqlserver, oracle)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the script to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate whenever the design file changes")
	return cmd
}

func runGenerate(cmd *cobra.Command, path string, opts *generateOptions) error {
	dialect, err := models.ParseDialect(opts.dialect)
	if err != nil {
		return err
	}

	render := func() error {
		design, err := designer.LoadFile(path)
		if err != nil {
			return err
		}
		sql := sqlgen.Generate(*design, dialect)
		if opts.out == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), sql)
			return err
		}
		if err := os.WriteFile(opts.out, []byte(sql+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.out, err)
		}
		printSuccess(cmd, "Wrote %s (%s)", opts.out, dialect.Label())
		return nil
	}

	if !opts.watch {
		return render()
	}

	w, err := watch.NewWatcher(path, watch.DefaultDebounce, func() error {
		if err := render(); err != nil {
			printError(cmd, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printSuccess(cmd, "Watching %s for changes... (Press Ctrl+C to stop)", path)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
