package sink

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gggpa/tickscrape/pkg/model"
)

func TestRotating_PartitionsByDay(t *testing.T) {
	dir := t.TempDir()
	s := NewRotating(dir, "IBM US Equity")

	ticks := []model.Tick{
		{Timestamp: "2008-08-11T15:30:01.000", EventType: "TRADE", Value: 100.5, Size: 200},
		{Timestamp: "2008-08-11T15:30:02.000", EventType: "TRADE", Value: 100.625, Size: 100},
		{Timestamp: "2008-08-12T09:00:00.000", EventType: "BID", Value: 99, Size: 300},
		{Timestamp: "2008-08-13T09:00:00.000", EventType: "ASK", Value: 101.25, Size: 50},
	}
	for _, tick := range ticks {
		if err := s.Write(tick); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 files, got %d", len(entries))
	}

	wantLines := map[string][]string{
		"IBM-US-Equity_2008-08-11.csv": {
			"2008-08-11T15:30:01.000,TRADE,100.500,200",
			"2008-08-11T15:30:02.000,TRADE,100.625,100",
		},
		"IBM-US-Equity_2008-08-12.csv": {
			"2008-08-12T09:00:00.000,BID,99.000,300",
		},
		"IBM-US-Equity_2008-08-13.csv": {
			"2008-08-13T09:00:00.000,ASK,101.250,50",
		},
	}

	for name, want := range wantLines {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing file %s: %v", name, err)
		}
		got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d lines, got %d", name, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s line %d: expected %q, got %q", name, i, want[i], got[i])
			}
		}
	}
}

func TestRotating_NoTicksNoFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewRotating(dir, "IBM US Equity")

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestRotating_AppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	tick := model.Tick{Timestamp: "2008-08-11T15:30:01.000", EventType: "TRADE", Value: 1, Size: 1}

	for run := 0; run < 2; run++ {
		s := NewRotating(dir, "IBM US Equity")
		if err := s.Write(tick); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "IBM-US-Equity_2008-08-11.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected 2 accumulated lines, got %d", n)
	}
}

func TestRotating_RejectsShortTimestamp(t *testing.T) {
	s := NewRotating(t.TempDir(), "IBM US Equity")
	defer func() { _ = s.Close() }()

	if err := s.Write(model.Tick{Timestamp: "bogus"}); err == nil {
		t.Error("expected an error for a timestamp without a date")
	}
}

func TestFormat_ValueAlwaysThreeDecimals(t *testing.T) {
	cases := map[float64]string{
		100:     "100.000",
		0:       "0.000",
		1234.5:  "1234.500",
		99.1235: "99.124",
		-2.5:    "-2.500",
		0.001:   "0.001",
	}
	for in, want := range cases {
		got, err := formatValue(in)
		if err != nil {
			t.Fatalf("formatValue(%v) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("formatValue(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormat_LineRoundTrips(t *testing.T) {
	tick := model.Tick{Timestamp: "2008-08-11T15:30:01.000", EventType: "TRADE", Value: 100.125, Size: 4200}

	line, err := formatLine(tick)
	if err != nil {
		t.Fatalf("formatLine failed: %v", err)
	}

	fields := strings.Split(strings.TrimSuffix(line, "\n"), ",")
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	if fields[0] != tick.Timestamp || fields[1] != tick.EventType {
		t.Errorf("timestamp/type mismatch: %v", fields)
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || value != tick.Value {
		t.Errorf("value did not round-trip: %q", fields[2])
	}
	if strings.Contains(fields[3], ".") {
		t.Errorf("size must not carry a decimal point: %q", fields[3])
	}
	size, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil || int32(size) != tick.Size {
		t.Errorf("size did not round-trip: %q", fields[3])
	}
}

func TestSingle_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	tick := model.Tick{Timestamp: "2008-08-11T15:30:01.000", EventType: "TRADE", Value: 1, Size: 1}

	for run := 0; run < 2; run++ {
		s, err := NewSingle(path)
		if err != nil {
			t.Fatalf("NewSingle failed: %v", err)
		}
		if err := s.Write(tick); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "TIME,TYPE,VALUE,SIZE" {
		t.Errorf("expected header row, got %q", lines[0])
	}
	if n := strings.Count(string(data), "TIME,TYPE,VALUE,SIZE"); n != 1 {
		t.Errorf("expected a single header, found %d", n)
	}
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
}
