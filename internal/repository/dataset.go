package repository

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aigoflow/training-service/internal/models"
)

// DatasetRepository stores datasets as JSONL files under a data root,
// one subdirectory per collection.
type DatasetRepository struct {
	datasetRoot string
}

func NewDatasetRepository(datasetRoot string) *DatasetRepository {
	return &DatasetRepository{
		datasetRoot: datasetRoot,
	}
}

func (r *DatasetRepository) ensureDir(dir string) error {
	fullPath := filepath.Join(r.datasetRoot, dir)
	return os.MkdirAll(fullPath, 0755)
}

func (r *DatasetRepository) DatasetPath(dir, name string) string {
	return filepath.Join(r.datasetRoot, dir, name+".jsonl")
}

func countRecords(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

// CreateDataset writes a new dataset file
func (r *DatasetRepository) CreateDataset(dir, name string, records []byte) (*models.DatasetInfo, error) {
	if err := r.ensureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create directory: %v", err)
	}

	datasetPath := r.DatasetPath(dir, name)

	// Check if file already exists
	if _, err := os.Stat(datasetPath); err == nil {
		return nil, fmt.Errorf("dataset %s/%s already exists", dir, name)
	}

	if err := os.WriteFile(datasetPath, records, 0644); err != nil {
		return nil, fmt.Errorf("failed to write dataset file: %v", err)
	}

	info, err := os.Stat(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %v", err)
	}

	return &models.DatasetInfo{
		Name:      name,
		Directory: dir,
		Records:   countRecords(records),
		Size:      info.Size(),
		Created:   info.ModTime(),
		Modified:  info.ModTime(),
	}, nil
}

// GetDataset retrieves a dataset's content and metadata
func (r *DatasetRepository) GetDataset(dir, name string) ([]byte, *models.DatasetInfo, error) {
	datasetPath := r.DatasetPath(dir, name)

	info, err := os.Stat(datasetPath)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("dataset %s/%s not found", dir, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access dataset file: %v", err)
	}

	content, err := os.ReadFile(datasetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset file: %v", err)
	}

	return content, &models.DatasetInfo{
		Name:      name,
		Directory: dir,
		Records:   countRecords(content),
		Size:      info.Size(),
		Created:   info.ModTime(),
		Modified:  info.ModTime(),
	}, nil
}

// DeleteDataset removes a dataset file
func (r *DatasetRepository) DeleteDataset(dir, name string) error {
	datasetPath := r.DatasetPath(dir, name)

	if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
		return fmt.Errorf("dataset %s/%s not found", dir, name)
	}

	return os.Remove(datasetPath)
}

// ListDatasets lists all datasets in a directory
func (r *DatasetRepository) ListDatasets(dir string) ([]*models.DatasetInfo, error) {
	fullPath := filepath.Join(r.datasetRoot, dir)

	entries, err := os.ReadDir(fullPath)
	if os.IsNotExist(err) {
		return []*models.DatasetInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %v", err)
	}

	var datasets []*models.DatasetInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		datasets = append(datasets, &models.DatasetInfo{
			Name:      strings.TrimSuffix(entry.Name(), ".jsonl"),
			Directory: dir,
			Size:      info.Size(),
			Created:   info.ModTime(),
			Modified:  info.ModTime(),
		})
	}

	return datasets, nil
}
