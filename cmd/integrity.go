package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"datadiff/feature/integrity"
	"datadiff/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag       bool
	integrityJSON bool
)

// integrityCmd runs every sink readiness check.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that the report sinks are ready",
	Long:  `Checks that the report bucket and prefix exist and that the database sink tables match their models. Use --fix to create what is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the report bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// databaseCheckCmd represents the integrity database command
var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check and migrate the database sink tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	integrityCmd.PersistentFlags().BoolVar(&fixFlag, "fix", false, "Create or migrate whatever is missing")
	integrityCmd.PersistentFlags().BoolVar(&integrityJSON, "json", false, "Print the reports as JSON")
	integrityCmd.AddCommand(storageCheckCmd, databaseCheckCmd)
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(ctx context.Context, checkStorage, checkDatabase bool) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	db, err := env.connectDatabase(checkDatabase && !checkStorage)
	if err != nil {
		return err
	}
	opts, err := env.serviceOptions(db)
	if err != nil {
		return err
	}
	svc := integrity.NewService(opts.Storage, opts.Bucket, opts.Region, opts.ReportPrefix, db, opts.SinkTable, env.logger)

	results := map[string]any{}
	failed := false

	if checkStorage {
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}
		if !report.Ready() && fixFlag {
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to fix storage: %w", err)
			}
		} else if !report.Ready() {
			failed = true
		}
		results["storage"] = report
		logStorageReport(env.logger, report)
	}

	if checkDatabase && db != nil {
		report, err := svc.CheckDatabase()
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		if !report.Matched && fixFlag {
			if err := svc.FixDatabase(ctx); err != nil {
				return fmt.Errorf("failed to migrate sink tables: %w", err)
			}
			env.logger.Info("Migrated sink tables")
		} else if !report.Matched {
			failed = true
		}
		results["database"] = report
		logDatabaseReport(env.logger, report)
	}

	if integrityJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("integrity checks found problems, rerun with --fix to repair")
	}
	return nil
}

func logStorageReport(l *zap.Logger, r *checks.StorageReport) {
	l.Info("Storage check",
		zap.String("bucket", r.Bucket),
		zap.Bool("bucket_exists", r.BucketExists),
		zap.String("prefix", r.ReportPrefix),
		zap.Bool("prefix_exists", r.PrefixExists),
		zap.Int("reports", r.Reports),
	)
}

func logDatabaseReport(l *zap.Logger, r *checks.DatabaseReport) {
	for name, tbl := range r.Tables {
		l.Info("Sink table check",
			zap.String("table", name),
			zap.String("status", tbl.Status),
			zap.Strings("missing_columns", tbl.MissingColumns),
			zap.Strings("type_mismatches", tbl.TypeMismatches),
		)
	}
	for _, e := range r.Errors {
		l.Error("Sink table inspection failed", zap.String("error", e))
	}
}
