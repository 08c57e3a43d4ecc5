package failure

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/job"
)

func record(status constants.ValidationStatus, data map[string]any) job.ValidatedRecord {
	return job.ValidatedRecord{
		IndividualResult: job.IndividualResult{
			TaskID:        "task-1",
			FilePath:      "docs/a.txt",
			ExtractedData: data,
		},
		ValidationStatus: status,
	}
}

func TestReasonPriority(t *testing.T) {
	tests := []struct {
		name string
		rec  job.ValidatedRecord
		want constants.FailureReason
	}{
		{
			name: "invalid always maps to schema failure",
			rec:  record(constants.ValidationInvalid, map[string]any{"title": "", "content": ""}),
			want: constants.ReasonSchemaValidationFailed,
		},
		{
			name: "missing title wins over short content",
			rec:  record(constants.ValidationPartial, map[string]any{"title": "", "content": "hello"}),
			want: constants.ReasonMissingTitle,
		},
		{
			name: "missing content after title present",
			rec:  record(constants.ValidationPartial, map[string]any{"title": "T", "content": ""}),
			want: constants.ReasonMissingContent,
		},
		{
			name: "short content last",
			rec:  record(constants.ValidationPartial, map[string]any{"title": "x", "content": "short"}),
			want: constants.ReasonContentTooShort,
		},
		{
			name: "whitespace padded content is still short",
			rec:  record(constants.ValidationPartial, map[string]any{"title": "x", "content": "  tiny   "}),
			want: constants.ReasonContentTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.rec); got != tt.want {
				t.Errorf("Reason() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRouteValidIsNoOp(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(nil, dir)

	entry, path, err := r.Route(record(constants.ValidationValid, map[string]any{"title": "T", "content": "long enough body"}))
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if entry != nil || path != "" {
		t.Fatalf("Route() = (%+v, %q), want no-op", entry, path)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("valid record created ledger files: %v", files)
	}
}

func TestRouteWritesHeaderAndRow(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(nil, dir)

	entry, path, err := r.Route(record(constants.ValidationPartial, map[string]any{"title": "", "content": "hello"}))
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if entry == nil {
		t.Fatal("Route() entry = nil for partial record")
	}
	if entry.FailureReason != constants.ReasonMissingTitle {
		t.Errorf("entry reason = %v, want missing_title", entry.FailureReason)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("ledger written outside failures dir: %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want header + 1", len(rows))
	}
	wantHeader := []string{"file_path", "failure_reason", "task_id", "timestamp"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "docs/a.txt" || rows[1][1] != "missing_title" || rows[1][2] != "task-1" {
		t.Errorf("ledger row = %v", rows[1])
	}
	if rows[1][3] == "" {
		t.Error("ledger row missing timestamp")
	}
}

func TestRouteAppendsNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(nil, dir)

	rec := record(constants.ValidationPartial, map[string]any{"title": "x", "content": "short"})
	if _, _, err := r.Route(rec); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	// Same task within the same second lands in the same file and must
	// extend it.
	if _, path2, err := r.Route(rec); err != nil {
		t.Fatalf("Route() error = %v", err)
	} else if f, err := os.Open(path2); err != nil {
		t.Fatalf("Open() error = %v", err)
	} else {
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(rows) < 2 {
			t.Fatalf("ledger rows = %d, want at least header + 1", len(rows))
		}
		for i, row := range rows {
			if len(row) != 4 {
				t.Errorf("row %d has %d columns, want 4", i, len(row))
			}
		}
	}

	// The directory only ever gains files; one file per task and second.
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no ledger files written")
	}
}

func TestRouteCreatesFailuresDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "failures")
	r := NewRouter(nil, dir)

	_, path, err := r.Route(record(constants.ValidationInvalid, nil))
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("ledger file missing: %v", err)
	}
}
