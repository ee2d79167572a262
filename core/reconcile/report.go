package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// AssembleInput gathers every stage output needed to build a report.
type AssembleInput struct {
	LabelA string
	LabelB string

	Partition *Partition
	Values    []DiffRecord

	ColumnsOnlyInA []string
	ColumnsOnlyInB []string
	RowCountA      int
	RowCountB      int

	// Clock stamps the records. Nil means time.Now.
	Clock func() time.Time
}

// Assemble merges left-only, right-only and value records, in that order, into a new
// Report. Every record shares one detection timestamp.
func Assemble(in AssembleInput) *Report {
	clock := in.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock().UTC()

	p := in.Partition
	if p == nil {
		p = &Partition{}
	}

	records := make([]DiffRecord, 0, len(p.LeftOnly)+len(p.RightOnly)+len(in.Values))
	for _, ref := range p.LeftOnly {
		records = append(records, presenceRecord(in, p.Key, ref, OnlyInA, now))
	}
	for _, ref := range p.RightOnly {
		records = append(records, presenceRecord(in, p.Key, ref, OnlyInB, now))
	}

	summary := Summary{
		RowsOnlyInA:    len(p.LeftOnly),
		RowsOnlyInB:    len(p.RightOnly),
		MatchedRows:    len(p.Matched),
		RowCountA:      in.RowCountA,
		RowCountB:      in.RowCountB,
		ColumnsOnlyInA: nonNil(in.ColumnsOnlyInA),
		ColumnsOnlyInB: nonNil(in.ColumnsOnlyInB),
	}
	summary.RowCountDifference = in.RowCountA - in.RowCountB
	if summary.RowCountDifference < 0 {
		summary.RowCountDifference = -summary.RowCountDifference
	}

	for _, rec := range in.Values {
		rec.DetectedAt = now
		records = append(records, rec)
		summary.ValueDifferences++
		if rec.ErrorDescription == ValueDifferenceUntrimmedOnly {
			summary.UntrimmedOnly++
		}
	}

	return &Report{
		ID:           uuid.NewString(),
		SourceALabel: in.LabelA,
		SourceBLabel: in.LabelB,
		KeyColumns:   nonNil(p.Key),
		Records:      records,
		Summary:      summary,
		GeneratedAt:  now,
	}
}

func presenceRecord(in AssembleInput, key []string, ref RowRef, desc Description, at time.Time) DiffRecord {
	return DiffRecord{
		SourceALabel:     in.LabelA,
		SourceBLabel:     in.LabelB,
		KeyColumns:       key,
		KeyValues:        ref.KeyValues,
		ErrorDescription: desc,
		DetectedAt:       at,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
