package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	p := &Partition{
		Key:       []string{"id"},
		Matched:   []MatchedPair{{Key: []string{"2"}, KeyValues: "2"}},
		LeftOnly:  []RowRef{{Key: []string{"1"}, KeyValues: "1"}},
		RightOnly: []RowRef{{Key: []string{"4"}, KeyValues: "4"}, {Key: []string{"5"}, KeyValues: "5"}},
	}
	values := []DiffRecord{
		{KeyValues: "2", ErrorDescription: ValueDifference, ErrorField: "amount", ValueA: "1", ValueB: "2"},
		{KeyValues: "2", ErrorDescription: ValueDifferenceUntrimmedOnly, ErrorField: "name", ValueA: "x ", ValueB: "x"},
	}

	report := Assemble(AssembleInput{
		LabelA:         "left",
		LabelB:         "right",
		Partition:      p,
		Values:         values,
		ColumnsOnlyInB: []string{"region"},
		RowCountA:      2,
		RowCountB:      3,
		Clock:          fixedClock,
	})

	require.Len(t, report.Records, 5)
	var order []Description
	for _, rec := range report.Records {
		order = append(order, rec.ErrorDescription)
		assert.Equal(t, fixedClock(), rec.DetectedAt)
	}
	assert.Equal(t, []Description{OnlyInA, OnlyInB, OnlyInB, ValueDifference, ValueDifferenceUntrimmedOnly}, order)

	assert.Equal(t, "left", report.Records[0].SourceALabel)
	assert.Equal(t, "right", report.Records[1].SourceBLabel)
	assert.Equal(t, []string{"id"}, report.Records[2].KeyColumns)
	assert.Empty(t, report.Records[1].ValueA)

	assert.Equal(t, Summary{
		RowsOnlyInA:        1,
		RowsOnlyInB:        2,
		ValueDifferences:   2,
		UntrimmedOnly:      1,
		MatchedRows:        1,
		RowCountA:          2,
		RowCountB:          3,
		RowCountDifference: 1,
		ColumnsOnlyInA:     []string{},
		ColumnsOnlyInB:     []string{"region"},
	}, report.Summary)

	assert.Zero(t, values[0].DetectedAt, "input records must not be modified")
}

func TestAssemble_Empty(t *testing.T) {
	report := Assemble(AssembleInput{LabelA: "a", LabelB: "b"})

	assert.NotNil(t, report.Records)
	assert.Empty(t, report.Records)
	assert.Equal(t, []string{}, report.KeyColumns)
	assert.False(t, report.HasDifferences())
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.GeneratedAt.IsZero())
}
