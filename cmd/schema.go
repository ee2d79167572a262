package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"datadiff/feature/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	schemaA    string
	schemaB    string
	schemaJSON bool
)

// schemaCmd compares column sets, column kinds and row counts without joining.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Compare the columns and row counts of two datasets",
	Long:  `Loads both datasets, normalizes column names and reports column drift, kind mismatches and the row count difference. No rows are joined.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaA == "" || schemaB == "" {
			return fmt.Errorf("both --a and --b are required")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		db, err := env.connectDatabase(needsDatabase(compare.Request{A: schemaA, B: schemaB}))
		if err != nil {
			return err
		}
		opts, err := env.serviceOptions(db)
		if err != nil {
			return err
		}
		opts.AllowLocalFiles = true
		svc := compare.NewService(opts)
		defer svc.Close()

		report, err := svc.Schema(cmd.Context(), schemaA, schemaB)
		if err != nil {
			return fmt.Errorf("schema comparison failed: %w", err)
		}

		if schemaJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		env.logger.Info("Schema report",
			zap.String("a", report.SourceA),
			zap.String("b", report.SourceB),
			zap.Bool("matched", report.Matched),
			zap.Strings("columns_only_in_a", report.ColumnsOnlyInA),
			zap.Strings("columns_only_in_b", report.ColumnsOnlyInB),
			zap.Strings("kind_mismatches", report.KindMismatches),
			zap.Int("rows_a", report.RowCountA),
			zap.Int("rows_b", report.RowCountB),
			zap.Int("row_count_difference", report.RowCountDifference),
		)
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaA, "a", "", "First dataset source")
	schemaCmd.Flags().StringVar(&schemaB, "b", "", "Second dataset source")
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print the report as JSON")
	RootCmd.AddCommand(schemaCmd)
}
