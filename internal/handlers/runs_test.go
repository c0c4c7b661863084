package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aigoflow/training-service/pkg/client"
)

// fakeSubmitter assigns a run ID the way the queue service does when
// the job arrives without one.
type fakeSubmitter struct {
	assigned string
	job      client.RunJob
}

func (f *fakeSubmitter) SubmitRun(job client.RunJob) (string, error) {
	if job.RunID == "" {
		job.RunID = f.assigned
	}
	f.job = job
	return job.RunID, nil
}

func TestSubmitRunEchoesAssignedID(t *testing.T) {
	submitter := &fakeSubmitter{assigned: "01JDE0000000000000000000AA"}
	handler := NewRunsHandler(nil, submitter)

	body := `{"method": "grpo", "dataset": "physics-grpo-train"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/training/runs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.handleRuns(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response was not JSON: %v", err)
	}

	// The client must get back the ID the queue assigned, not the empty
	// one it posted, or it can never poll the run's steps.
	if resp["run_id"] != submitter.assigned {
		t.Errorf("Expected run_id %q, got %q", submitter.assigned, resp["run_id"])
	}
	if resp["status"] != "queued" {
		t.Errorf("Expected status queued, got %q", resp["status"])
	}
	if submitter.job.Method != "grpo" || submitter.job.Dataset != "physics-grpo-train" {
		t.Errorf("Job not carried through: %+v", submitter.job)
	}
}

func TestSubmitRunRejectsIncompleteJob(t *testing.T) {
	handler := NewRunsHandler(nil, &fakeSubmitter{assigned: "x"})

	req := httptest.NewRequest(http.MethodPost, "/v1/training/runs", strings.NewReader(`{"method": "sft"}`))
	rec := httptest.NewRecorder()
	handler.handleRuns(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing dataset, got %d", rec.Code)
	}
}
