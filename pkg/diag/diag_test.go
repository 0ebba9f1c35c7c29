package diag_test

import (
	"testing"

	"github.com/thinlayer/csg2d/pkg/diag"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		name string
		sev  diag.Severity
		want string
	}{
		{"Ignore", diag.Ignore, "ignore"},
		{"Warn", diag.Warn, "warn"},
		{"Fail", diag.Fail, "fail"},
		{"Invalid", diag.Severity(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sev.String(); got != tt.want {
				t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
			}
		})
	}
}

func TestRecordFatal(t *testing.T) {
	r := diag.Record{Severity: diag.Fail, Message: "boom"}
	if !r.Fatal() {
		t.Error("expected Fail record to be fatal")
	}
	r.Severity = diag.Warn
	if r.Fatal() {
		t.Error("expected Warn record not to be fatal")
	}
}

func TestCollector(t *testing.T) {
	var c diag.Collector
	c.Report(diag.Record{Message: "a", Severity: diag.Warn})
	c.Report(diag.Record{Message: "b", Severity: diag.Fail})

	if !c.HasFatal() {
		t.Fatal("expected HasFatal true")
	}
	f := c.Fatal()
	if f == nil || f.Message != "b" {
		t.Fatalf("expected fatal record 'b', got %+v", f)
	}
	if len(c.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(c.Records))
	}
}

func TestSourceLocString(t *testing.T) {
	var zero diag.SourceLoc
	if !zero.IsZero() {
		t.Error("expected zero-value SourceLoc to be zero")
	}
	if got := zero.String(); got != "<unknown>" {
		t.Errorf("zero SourceLoc.String() = %q", got)
	}

	loc := diag.SourceLoc{File: "model.scad", Line: 12, Col: 4}
	if loc.IsZero() {
		t.Error("expected non-empty SourceLoc not to be zero")
	}
	if got, want := loc.String(), "model.scad:12:4"; got != want {
		t.Errorf("SourceLoc.String() = %q, want %q", got, want)
	}
}
