package submit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/common"
	"github.com/joseph-ayodele/docpipeline/internal/gemini"
)

type fakeReader struct {
	contents map[string]string
	errs     map[string]error
}

func (f *fakeReader) ReadFile(path string) (string, error) {
	if err, ok := f.errs[path]; ok {
		return "", err
	}
	return f.contents[path], nil
}

type fakeCreator struct {
	displayName string
	reqs        []gemini.Request
	batch       *gemini.Batch
	err         error
}

func (f *fakeCreator) CreateBatch(_ context.Context, displayName string, reqs []gemini.Request) (*gemini.Batch, error) {
	f.displayName = displayName
	f.reqs = reqs
	return f.batch, f.err
}

func TestSubmitBuildsOneRequestPerFile(t *testing.T) {
	reader := &fakeReader{contents: map[string]string{
		"a.txt": "alpha body",
		"b.txt": "beta body",
	}}
	creator := &fakeCreator{batch: &gemini.Batch{Name: "batches/xyz", State: gemini.StatePending}}
	s := NewSubmitter(nil, reader, creator)

	bj, err := s.Submit(context.Background(), []string{"a.txt", "b.txt"}, "Extract title and content.")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(creator.reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(creator.reqs))
	}
	first := creator.reqs[0].Contents[0].Parts[0].Text
	if !strings.HasPrefix(first, "Extract title and content.") {
		t.Errorf("request 0 missing prompt prefix: %q", first)
	}
	if !strings.Contains(first, "alpha body") {
		t.Errorf("request 0 missing document content: %q", first)
	}
	if !strings.Contains(creator.reqs[1].Contents[0].Parts[0].Text, "beta body") {
		t.Errorf("request 1 carries wrong content")
	}

	if bj.TaskID == "" {
		t.Error("job missing task_id")
	}
	if bj.ExternalJobID != "batches/xyz" {
		t.Errorf("external job id = %q", bj.ExternalJobID)
	}
	if bj.Status != constants.JobStatusSubmitted {
		t.Errorf("status = %v, want submitted", bj.Status)
	}
	if bj.FileCount != 2 || len(bj.FilePaths) != 2 {
		t.Errorf("file bookkeeping = %d/%v", bj.FileCount, bj.FilePaths)
	}
	if !strings.HasPrefix(creator.displayName, "batch_job_") {
		t.Errorf("display name = %q", creator.displayName)
	}
}

func TestSubmitUnreadableFileGetsDiagnosticMarker(t *testing.T) {
	reader := &fakeReader{
		contents: map[string]string{"good.txt": "fine"},
		errs:     map[string]error{"bad.txt": errors.New("permission denied")},
	}
	creator := &fakeCreator{batch: &gemini.Batch{Name: "batches/xyz"}}
	s := NewSubmitter(nil, reader, creator)

	bj, err := s.Submit(context.Background(), []string{"good.txt", "bad.txt"}, "p")
	if err != nil {
		t.Fatalf("Submit() error = %v, unreadable file must not abort the batch", err)
	}
	if len(creator.reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(creator.reqs))
	}
	marker := creator.reqs[1].Contents[0].Parts[0].Text
	if !strings.Contains(marker, "[ERROR: Failed to read file - permission denied]") {
		t.Errorf("diagnostic marker missing: %q", marker)
	}
	if bj.FileCount != 2 {
		t.Errorf("unreadable file dropped from bookkeeping: %d", bj.FileCount)
	}
}

func TestSubmitRejectedIsTerminal(t *testing.T) {
	reader := &fakeReader{contents: map[string]string{"a.txt": "x"}}
	creator := &fakeCreator{err: errors.New("429 resource exhausted")}
	s := NewSubmitter(nil, reader, creator)

	_, err := s.Submit(context.Background(), []string{"a.txt"}, "p")
	if !errors.Is(err, common.ErrSubmission) {
		t.Fatalf("Submit() error = %v, want ErrSubmission", err)
	}
	if !strings.Contains(err.Error(), "429 resource exhausted") {
		t.Errorf("error does not carry cause: %v", err)
	}
}

func TestSubmitTaskIDsAreUnique(t *testing.T) {
	reader := &fakeReader{contents: map[string]string{"a.txt": "x"}}
	creator := &fakeCreator{batch: &gemini.Batch{Name: "batches/xyz"}}
	s := NewSubmitter(nil, reader, creator)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		bj, err := s.Submit(context.Background(), []string{"a.txt"}, "p")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if seen[bj.TaskID] {
			t.Fatalf("duplicate task_id %q", bj.TaskID)
		}
		seen[bj.TaskID] = true
	}
}
