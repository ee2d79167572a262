package checks

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"datadiff/core/database"
	"datadiff/feature/compare"
	"datadiff/feature/compare/models"

	"gorm.io/gorm"
)

// DatabaseReport is the result of a database sink check.
type DatabaseReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport describes one sink table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckDatabase verifies the sink tables against the GORM models they are written from.
// recordTable is the configured record table; empty means the model default.
func CheckDatabase(db *gorm.DB, recordTable string) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if recordTable == "" {
		recordTable = models.DiffRecordRow{}.TableName()
	}

	report := &DatabaseReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	expected := []struct {
		table string
		model any
	}{
		{recordTable, models.DiffRecordRow{}},
		{models.DiffRunRow{}.TableName(), models.DiffRunRow{}},
	}

	for _, exp := range expected {
		tbl, err := checkTable(db, exp.table, reflect.TypeOf(exp.model))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", exp.table, err))
			report.Matched = false
			continue
		}
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[exp.table] = tbl
	}

	return report, nil
}

func checkTable(db *gorm.DB, table string, model reflect.Type) (TableReport, error) {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, table)
	if err != nil {
		return tbl, err
	}

	actual := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actual[col.Field] = col
	}

	for i := 0; i < model.NumField(); i++ {
		tag := model.Field(i).Tag.Get("gorm")
		colName := parseGormTag(tag, "column")
		if colName == "" {
			continue
		}

		col, exists := actual[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			continue
		}

		// Only columns with an explicit type are type-checked.
		if expType := strings.ToLower(parseGormTag(tag, "type")); expType != "" && !strings.Contains(col.Type, expType) {
			tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
		}
	}

	sort.Strings(tbl.MissingColumns)
	switch {
	case len(actualCols) == 0:
		tbl.Status = "missing"
	case len(tbl.MissingColumns) > 0 || len(tbl.TypeMismatches) > 0:
		tbl.Status = "error"
	}
	return tbl, nil
}

// parseGormTag returns the value of key in a GORM struct tag.
func parseGormTag(tag, key string) string {
	for _, part := range strings.Split(tag, ";") {
		if v, ok := strings.CutPrefix(part, key+":"); ok {
			return v
		}
	}
	return ""
}

// FixDatabase creates or migrates the sink tables.
func FixDatabase(ctx context.Context, db *gorm.DB, recordTable string) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return (&compare.DatabaseSink{DB: db, Table: recordTable}).Migrate(ctx)
}
