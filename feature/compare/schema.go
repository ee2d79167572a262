package compare

import (
	"fmt"
	"sort"

	"datadiff/core/database"
	"datadiff/core/dataset"
	"datadiff/core/reconcile"

	"gorm.io/gorm"
)

// SchemaReport describes column and row-count drift between two datasets.
type SchemaReport struct {
	SourceA            string   `json:"source_a"`
	SourceB            string   `json:"source_b"`
	ColumnsOnlyInA     []string `json:"columns_only_in_a"`
	ColumnsOnlyInB     []string `json:"columns_only_in_b"`
	KindMismatches     []string `json:"kind_mismatches"`
	RowCountA          int      `json:"row_count_a"`
	RowCountB          int      `json:"row_count_b"`
	RowCountDifference int      `json:"row_count_difference"`
	Matched            bool     `json:"matched"`
}

// BuildSchemaReport compares two normalized datasets without joining them.
func BuildSchemaReport(a, b *dataset.Dataset) *SchemaReport {
	onlyA, onlyB := reconcile.DiffColumns(a, b)
	countA, countB, diff := reconcile.CountRows(a, b)

	report := &SchemaReport{
		SourceA:            a.Label(),
		SourceB:            b.Label(),
		ColumnsOnlyInA:     onlyA,
		ColumnsOnlyInB:     onlyB,
		KindMismatches:     []string{},
		RowCountA:          countA,
		RowCountB:          countB,
		RowCountDifference: diff,
	}

	names := a.ColumnNames()
	sort.Strings(names)
	for _, name := range names {
		if !b.HasColumn(name) {
			continue
		}
		kindA, kindB := a.ColumnKind(name), b.ColumnKind(name)
		// All-null columns carry no type information.
		if kindA == kindB || kindA == dataset.KindNull || kindB == dataset.KindNull {
			continue
		}
		report.KindMismatches = append(report.KindMismatches, fmt.Sprintf("%s: %s vs %s", name, kindA, kindB))
	}

	report.Matched = len(onlyA) == 0 && len(onlyB) == 0 && len(report.KindMismatches) == 0 && diff == 0
	return report
}

// TableComparison describes the schema difference between two database tables.
type TableComparison struct {
	TableA         string   `json:"table_a"`
	TableB         string   `json:"table_b"`
	ColumnsOnlyInA []string `json:"columns_only_in_a"`
	ColumnsOnlyInB []string `json:"columns_only_in_b"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CompareTables inspects both tables and compares column names and declared types.
func CompareTables(db *gorm.DB, tableA, tableB string) (*TableComparison, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	colsA, err := database.GetTableColumns(db, tableA)
	if err != nil {
		return nil, err
	}
	colsB, err := database.GetTableColumns(db, tableB)
	if err != nil {
		return nil, err
	}
	if len(colsA) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableA)
	}
	if len(colsB) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableB)
	}

	typesA := make(map[string]string, len(colsA))
	for _, col := range colsA {
		typesA[col.Field] = col.Type
	}
	typesB := make(map[string]string, len(colsB))
	for _, col := range colsB {
		typesB[col.Field] = col.Type
	}

	cmp := &TableComparison{
		TableA:         tableA,
		TableB:         tableB,
		ColumnsOnlyInA: []string{},
		ColumnsOnlyInB: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	for name, typeA := range typesA {
		typeB, exists := typesB[name]
		if !exists {
			cmp.ColumnsOnlyInA = append(cmp.ColumnsOnlyInA, name)
			continue
		}
		if typeA != typeB {
			cmp.TypeMismatches = append(cmp.TypeMismatches, fmt.Sprintf("%s: %s vs %s", name, typeA, typeB))
		}
	}
	for name := range typesB {
		if _, exists := typesA[name]; !exists {
			cmp.ColumnsOnlyInB = append(cmp.ColumnsOnlyInB, name)
		}
	}

	sort.Strings(cmp.ColumnsOnlyInA)
	sort.Strings(cmp.ColumnsOnlyInB)
	sort.Strings(cmp.TypeMismatches)

	if len(cmp.ColumnsOnlyInA) > 0 || len(cmp.ColumnsOnlyInB) > 0 || len(cmp.TypeMismatches) > 0 {
		cmp.Status = "error"
	}
	return cmp, nil
}
