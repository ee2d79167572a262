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
	tableA     string
	tableB     string
	tablesJSON bool
)

// tablesCmd compares the declared schemas of two database tables.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Compare the column definitions of two database tables",
	Long:  `Inspects two tables of the configured database and reports columns present on one side only and columns whose declared types differ.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tableA == "" || tableB == "" {
			return fmt.Errorf("both --a and --b are required")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		db, err := env.connectDatabase(true)
		if err != nil {
			return err
		}

		cmp, err := compare.CompareTables(db, tableA, tableB)
		if err != nil {
			return fmt.Errorf("table comparison failed: %w", err)
		}

		if tablesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cmp)
		}

		env.logger.Info("Table comparison",
			zap.String("a", cmp.TableA),
			zap.String("b", cmp.TableB),
			zap.String("status", cmp.Status),
			zap.Strings("columns_only_in_a", cmp.ColumnsOnlyInA),
			zap.Strings("columns_only_in_b", cmp.ColumnsOnlyInB),
			zap.Strings("type_mismatches", cmp.TypeMismatches),
		)
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVar(&tableA, "a", "", "First table (table or schema.table)")
	tablesCmd.Flags().StringVar(&tableB, "b", "", "Second table (table or schema.table)")
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "Print the comparison as JSON")
	RootCmd.AddCommand(tablesCmd)
}
