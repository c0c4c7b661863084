package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aigoflow/training-service/internal/services"
	"github.com/aigoflow/training-service/pkg/client"
)

// RunSubmitter queues a run job for the worker pool and returns the
// assigned run ID so callers can poll for steps later.
type RunSubmitter interface {
	SubmitRun(job client.RunJob) (string, error)
}

type RunsHandler struct {
	trainingService *services.TrainingService
	submitter       RunSubmitter
}

func NewRunsHandler(trainingService *services.TrainingService, submitter RunSubmitter) *RunsHandler {
	return &RunsHandler{
		trainingService: trainingService,
		submitter:       submitter,
	}
}

func (h *RunsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/training/runs", h.handleRuns)
	mux.HandleFunc("/v1/training/runs/", h.handleRunSteps)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/logs", h.handleLogs)
}

func (h *RunsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *RunsHandler) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submitRun(w, r)
	case http.MethodGet:
		h.listRuns(w, r)
	default:
		http.Error(w, "GET or POST only", http.StatusMethodNotAllowed)
	}
}

func (h *RunsHandler) submitRun(w http.ResponseWriter, r *http.Request) {
	var job client.RunJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if job.Method == "" || job.Dataset == "" {
		http.Error(w, "method and dataset are required", http.StatusBadRequest)
		return
	}

	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		job.TraceID = traceID
	}

	runID, err := h.submitter.SubmitRun(job)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to queue run: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"status": "queued",
	})
}

func (h *RunsHandler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	runs, err := h.trainingService.GetRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get runs: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}

// handleRunSteps serves /v1/training/runs/{id}/steps
func (h *RunsHandler) handleRunSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/training/runs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "steps" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	runID := parts[0]

	limit := 1000
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	steps, err := h.trainingService.GetSteps(r.Context(), runID, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get steps: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(steps)
}

func (h *RunsHandler) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	runs, err := h.trainingService.GetRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get logs: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}
