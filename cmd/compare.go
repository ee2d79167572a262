package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"datadiff/core/reconcile"
	"datadiff/core/utils"
	"datadiff/feature/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the compare command
	sourceA       string
	sourceB       string
	keyColumns    string
	labelA        string
	labelB        string
	stringColumns string
	jsonOutput    string
	sinkNames     string
	outputPath    string
	jobPath       string
	failOnDiff    bool
)

// compareCmd compares two datasets, or every comparison of a job file.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two datasets joined on a key",
	Long: `Compare two datasets joined on one or more key columns.

Reports rows present on one side only and cells whose values differ.

Sources:
  file:path.csv  file:path.parquet  s3:object/key.csv  db:table  pg:schema.table

Examples:
  # Compare two CSV exports
  compare --a file:old.csv --b file:new.csv --key order_id

  # Composite key, keep price as text, write the report to the bucket
  compare --a s3:exports/a.parquet --b pg:public.orders --key region,sku \
    --string-columns price --sink storage

  # Run every comparison of a job file
  compare --job nightly.yaml`,
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&sourceA, "a", "", "First dataset source")
	f.StringVar(&sourceB, "b", "", "Second dataset source")
	f.StringVar(&keyColumns, "key", "", "Key columns, comma separated")
	f.StringVar(&labelA, "label-a", "", "Label of the first dataset in the report")
	f.StringVar(&labelB, "label-b", "", "Label of the second dataset in the report")
	f.StringVar(&stringColumns, "string-columns", "", "Columns kept as text instead of type-inferred")
	f.StringVar(&jsonOutput, "json", "", "Write the full report as JSON to this file (- for stdout)")
	f.StringVar(&sinkNames, "sink", "", "Report sinks, comma separated: storage, database, file")
	f.StringVar(&outputPath, "output", "", "Path written by the file sink (.json, .csv or .parquet)")
	f.StringVar(&jobPath, "job", "", "YAML job file listing comparisons")
	f.BoolVar(&failOnDiff, "fail-on-diff", false, "Exit with an error when differences are found")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reqs, err := compareRequests()
	if err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	db, err := env.connectDatabase(needsDatabase(reqs...))
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

	differences := 0
	for i, req := range reqs {
		start := time.Now()
		env.logger.Info("Comparing datasets",
			zap.Int("comparison", i+1),
			zap.String("a", req.A),
			zap.String("b", req.B),
			zap.Strings("key", req.Key),
		)

		report, err := svc.Compare(ctx, req)
		if report != nil {
			printCompareReport(env.logger, report, time.Since(start))
			if report.HasDifferences() {
				differences++
			}
			if jsonErr := writeJSON(report); jsonErr != nil && err == nil {
				err = jsonErr
			}
		}
		if err != nil {
			return fmt.Errorf("comparison %d failed: %w", i+1, err)
		}
	}

	if failOnDiff && differences > 0 {
		return fmt.Errorf("differences found in %d of %d comparisons", differences, len(reqs))
	}
	return nil
}

// compareRequests builds the requests from --job or from the single-comparison flags.
func compareRequests() ([]compare.Request, error) {
	if jobPath != "" {
		if sourceA != "" || sourceB != "" {
			return nil, fmt.Errorf("--job cannot be combined with --a/--b")
		}
		job, err := compare.LoadJob(jobPath)
		if err != nil {
			return nil, err
		}
		return job.Comparisons, nil
	}

	req := compare.Request{
		A:             sourceA,
		B:             sourceB,
		Key:           utils.SplitList(keyColumns),
		LabelA:        labelA,
		LabelB:        labelB,
		StringColumns: utils.SplitList(stringColumns),
		Sinks:         utils.SplitList(sinkNames),
		Output:        outputPath,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []compare.Request{req}, nil
}

func writeJSON(report *reconcile.Report) error {
	switch jsonOutput {
	case "":
		return nil
	case "-":
		return compare.ExportReport(os.Stdout, report, compare.FormatJSON)
	default:
		return (&compare.FileSink{Path: jsonOutput}).Write(context.Background(), report)
	}
}

// printCompareReport logs the summary metrics and a sample of records.
func printCompareReport(l *zap.Logger, report *reconcile.Report, took time.Duration) {
	s := report.Summary

	l.Info("Comparison report",
		zap.String("id", report.ID),
		zap.String("a", report.SourceALabel),
		zap.String("b", report.SourceBLabel),
		zap.Int("rows_a", s.RowCountA),
		zap.Int("rows_b", s.RowCountB),
		zap.Int("matched_rows", s.MatchedRows),
		zap.Int("only_in_a", s.RowsOnlyInA),
		zap.Int("only_in_b", s.RowsOnlyInB),
		zap.Int("value_differences", s.ValueDifferences),
		zap.Int("untrimmed_only", s.UntrimmedOnly),
		zap.Duration("took", took),
	)

	if len(s.ColumnsOnlyInA) > 0 || len(s.ColumnsOnlyInB) > 0 {
		l.Warn("Column sets differ",
			zap.Strings("columns_only_in_a", s.ColumnsOnlyInA),
			zap.Strings("columns_only_in_b", s.ColumnsOnlyInB),
		)
	}

	// Show sample of records (max 5 for logger)
	maxShow := min(5, len(report.Records))
	for _, rec := range report.Records[:maxShow] {
		l.Info("Sample difference",
			zap.String("type", string(rec.ErrorDescription)),
			zap.String("key", rec.KeyValues),
			zap.String("field", rec.ErrorField),
			zap.String("value_a", rec.ValueA),
			zap.String("value_b", rec.ValueB),
		)
	}
	if len(report.Records) > maxShow {
		l.Info("Additional differences not shown", zap.Int("count", len(report.Records)-maxShow))
	}
}
