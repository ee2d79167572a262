package cmd

import (
	"fmt"
	"os"

	"datadiff/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "datadiff",
	Short: "Keyed dataset comparison",
	Long: `datadiff compares two tabular datasets joined on a key and reports rows present
on one side only and cells whose values differ.

Datasets can be read from CSV or Parquet files, bucket objects, SQL tables and
Postgres tables. Reports can be written to files, the bucket or a database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with the development config keeps CLI errors readable.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
