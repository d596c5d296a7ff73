// Package export writes metric rows to analysis-friendly formats: CSV for
// spreadsheets and quick plotting, Arrow IPC for columnar tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/rumornet/internal/metrics"
)

// csvHeader is the column order shared by both formats.
var csvHeader = []string{
	"run_id",
	"repetition",
	"tick",
	"network_type",
	"rumor_is_true",
	"seed",
	"proportion_informed",
	"mean_belief",
	"mean_belief_informed",
	"believers",
	"belief_variance",
	"trust_variance",
	"verified",
	"verification_tick",
}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []metrics.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.RunID,
			strconv.Itoa(r.Repetition),
			strconv.Itoa(r.Tick),
			r.NetworkType,
			strconv.FormatBool(r.RumorIsTrue),
			strconv.FormatUint(r.Seed, 10),
			formatFloat(r.ProportionInformed),
			formatFloat(r.MeanBelief),
			formatFloat(r.MeanBeliefInformed),
			strconv.Itoa(r.Believers),
			formatFloat(r.BeliefVariance),
			formatFloat(r.TrustVariance),
			strconv.FormatBool(r.Verified),
			strconv.Itoa(r.VerificationTick),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Schema is the Arrow schema of an exported record batch. Column order
// matches the CSV header.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "run_id", Type: arrow.BinaryTypes.String},
		{Name: "repetition", Type: arrow.PrimitiveTypes.Int64},
		{Name: "tick", Type: arrow.PrimitiveTypes.Int64},
		{Name: "network_type", Type: arrow.BinaryTypes.String},
		{Name: "rumor_is_true", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "seed", Type: arrow.PrimitiveTypes.Uint64},
		{Name: "proportion_informed", Type: arrow.PrimitiveTypes.Float64},
		{Name: "mean_belief", Type: arrow.PrimitiveTypes.Float64},
		{Name: "mean_belief_informed", Type: arrow.PrimitiveTypes.Float64},
		{Name: "believers", Type: arrow.PrimitiveTypes.Int64},
		{Name: "belief_variance", Type: arrow.PrimitiveTypes.Float64},
		{Name: "trust_variance", Type: arrow.PrimitiveTypes.Float64},
		{Name: "verified", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "verification_tick", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
}

// WriteArrow writes rows as a single record batch in the Arrow IPC file
// format.
func WriteArrow(w io.WriteSeeker, rows []metrics.Row) error {
	alloc := memory.NewGoAllocator()
	schema := Schema()

	b := array.NewRecordBuilder(alloc, schema)
	defer b.Release()

	for _, r := range rows {
		b.Field(0).(*array.StringBuilder).Append(r.RunID)
		b.Field(1).(*array.Int64Builder).Append(int64(r.Repetition))
		b.Field(2).(*array.Int64Builder).Append(int64(r.Tick))
		b.Field(3).(*array.StringBuilder).Append(r.NetworkType)
		b.Field(4).(*array.BooleanBuilder).Append(r.RumorIsTrue)
		b.Field(5).(*array.Uint64Builder).Append(r.Seed)
		b.Field(6).(*array.Float64Builder).Append(r.ProportionInformed)
		b.Field(7).(*array.Float64Builder).Append(r.MeanBelief)
		b.Field(8).(*array.Float64Builder).Append(r.MeanBeliefInformed)
		b.Field(9).(*array.Int64Builder).Append(int64(r.Believers))
		b.Field(10).(*array.Float64Builder).Append(r.BeliefVariance)
		b.Field(11).(*array.Float64Builder).Append(r.TrustVariance)
		b.Field(12).(*array.BooleanBuilder).Append(r.Verified)
		b.Field(13).(*array.Int64Builder).Append(int64(r.VerificationTick))
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return nil
}

// ReadArrow reads rows back from the Arrow IPC file format. It is the
// inverse of WriteArrow.
func ReadArrow(r ipc.ReadAtSeeker) ([]metrics.Row, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("opening arrow file: %w", err)
	}
	defer fr.Close()

	var rows []metrics.Row
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading arrow record %d: %w", i, err)
		}
		runIDs := rec.Column(0).(*array.String)
		reps := rec.Column(1).(*array.Int64)
		ticks := rec.Column(2).(*array.Int64)
		netTypes := rec.Column(3).(*array.String)
		rumorTrue := rec.Column(4).(*array.Boolean)
		seeds := rec.Column(5).(*array.Uint64)
		propInformed := rec.Column(6).(*array.Float64)
		meanBelief := rec.Column(7).(*array.Float64)
		meanBeliefInf := rec.Column(8).(*array.Float64)
		believers := rec.Column(9).(*array.Int64)
		beliefVar := rec.Column(10).(*array.Float64)
		trustVar := rec.Column(11).(*array.Float64)
		verified := rec.Column(12).(*array.Boolean)
		verTick := rec.Column(13).(*array.Int64)

		for j := 0; j < int(rec.NumRows()); j++ {
			rows = append(rows, metrics.Row{
				RunID:              runIDs.Value(j),
				Repetition:         int(reps.Value(j)),
				Tick:               int(ticks.Value(j)),
				NetworkType:        netTypes.Value(j),
				RumorIsTrue:        rumorTrue.Value(j),
				Seed:               seeds.Value(j),
				ProportionInformed: propInformed.Value(j),
				MeanBelief:         meanBelief.Value(j),
				MeanBeliefInformed: meanBeliefInf.Value(j),
				Believers:          int(believers.Value(j)),
				BeliefVariance:     beliefVar.Value(j),
				TrustVariance:      trustVar.Value(j),
				Verified:           verified.Value(j),
				VerificationTick:   int(verTick.Value(j)),
			})
		}
	}
	return rows, nil
}
