package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aigoflow/training-service/internal/repository"
)

// DatasetsHandler exposes the file-backed dataset store over HTTP.
// Datasets are grouped by purpose directory: sft/ or grpo/.
type DatasetsHandler struct {
	repo repository.DatasetRepositoryInterface
}

func NewDatasetsHandler(repo repository.DatasetRepositoryInterface) *DatasetsHandler {
	return &DatasetsHandler{repo: repo}
}

func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/datasets/", h.handleDataset)
}

// handleDataset serves /v1/datasets/{dir} and /v1/datasets/{dir}/{name}
func (h *DatasetsHandler) handleDataset(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/datasets/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch len(parts) {
	case 1:
		if parts[0] == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.handleList(w, r, parts[0])
	case 2:
		h.handleOne(w, r, parts[0], parts[1])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *DatasetsHandler) handleList(w http.ResponseWriter, r *http.Request, dir string) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}

	datasets, err := h.repo.ListDatasets(dir)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list datasets: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(datasets)
}

func (h *DatasetsHandler) handleOne(w http.ResponseWriter, r *http.Request, dir, name string) {
	switch r.Method {
	case http.MethodGet:
		content, info, err := h.repo.GetDataset(dir, name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/jsonl")
		w.Header().Set("X-Dataset-Records", fmt.Sprintf("%d", info.Records))
		_, _ = w.Write(content)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		info, err := h.repo.CreateDataset(dir, name, body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(info)

	case http.MethodDelete:
		if err := h.repo.DeleteDataset(dir, name); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "GET, PUT or DELETE only", http.StatusMethodNotAllowed)
	}
}
