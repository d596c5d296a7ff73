package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/rumornet/internal/metrics"
)

func sampleRows() []metrics.Row {
	return []metrics.Row{
		{
			RunID:              "run-a",
			Repetition:         0,
			Tick:               500,
			NetworkType:        "small-world",
			RumorIsTrue:        true,
			Seed:               42,
			ProportionInformed: 0.92,
			MeanBelief:         0.61,
			MeanBeliefInformed: 0.66,
			Believers:          55,
			BeliefVariance:     0.04,
			TrustVariance:      0.012,
			Verified:           true,
			VerificationTick:   100,
		},
		{
			RunID:            "run-b",
			Repetition:       1,
			Tick:             500,
			NetworkType:      "random",
			Seed:             43,
			VerificationTick: -1,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "run_id,repetition,tick,network_type") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "run-a,0,500,small-world,true,42,0.92") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "false,-1") {
		t.Errorf("zero-value row should end with false,-1: %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export should still write the header, got %d lines", len(lines))
	}
}

func TestArrowRoundTrip(t *testing.T) {
	want := sampleRows()

	f, err := os.Create(filepath.Join(t.TempDir(), "rows.arrow"))
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	if err := WriteArrow(f, want); err != nil {
		t.Fatalf("WriteArrow: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing temp file: %v", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	got, err := ReadArrow(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadArrow: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSchemaMatchesHeader(t *testing.T) {
	s := Schema()
	if s.NumFields() != len(csvHeader) {
		t.Fatalf("schema has %d fields, csv header has %d columns", s.NumFields(), len(csvHeader))
	}
	for i, f := range s.Fields() {
		if f.Name != csvHeader[i] {
			t.Errorf("field %d = %q, want %q", i, f.Name, csvHeader[i])
		}
	}
}
