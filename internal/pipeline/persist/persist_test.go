package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/docpipeline/internal/job"
)

type fakeRepo struct {
	inserts []job.ValidatedRecord
	upserts []job.ValidatedRecord
	err     error
}

func (f *fakeRepo) EnsureIndexes(context.Context) error { return nil }

func (f *fakeRepo) Insert(_ context.Context, rec job.ValidatedRecord) error {
	f.inserts = append(f.inserts, rec)
	return f.err
}

func (f *fakeRepo) Upsert(_ context.Context, rec job.ValidatedRecord) error {
	f.upserts = append(f.upserts, rec)
	return f.err
}

func testRecord() job.ValidatedRecord {
	return job.ValidatedRecord{
		IndividualResult: job.IndividualResult{TaskID: "task-1", ResultIndex: 2, FilePath: "a.txt"},
		ValidationStatus: "valid",
	}
}

func TestWriteModeDispatch(t *testing.T) {
	repo := &fakeRepo{}
	w := NewWriter(nil, repo)

	if got := w.Write(context.Background(), testRecord(), ModeInsert); got != WriteSuccess {
		t.Fatalf("Write(insert) = %v, want success", got)
	}
	if got := w.Write(context.Background(), testRecord(), ModeUpsert); got != WriteSuccess {
		t.Fatalf("Write(upsert) = %v, want success", got)
	}
	if len(repo.inserts) != 1 || len(repo.upserts) != 1 {
		t.Errorf("calls = %d inserts, %d upserts, want 1 each", len(repo.inserts), len(repo.upserts))
	}
	if repo.inserts[0].TaskID != "task-1" {
		t.Errorf("insert record mismatch: %+v", repo.inserts[0])
	}
}

func TestWriteFailureIsOutcomeNotPanic(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection reset")}
	w := NewWriter(nil, repo)

	if got := w.Write(context.Background(), testRecord(), ModeInsert); got != WriteFailed {
		t.Fatalf("Write() = %v, want failed", got)
	}
	// Siblings keep writing after a failure.
	repo.err = nil
	if got := w.Write(context.Background(), testRecord(), ModeInsert); got != WriteSuccess {
		t.Fatalf("Write() after failure = %v, want success", got)
	}
}
