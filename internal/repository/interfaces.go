package repository

import (
	"context"

	"github.com/aigoflow/training-service/internal/models"
)

// Repository aggregates all repository interfaces
type Repository interface {
	Run() RunRepositoryInterface
	Step() StepRepositoryInterface
	Event() EventRepositoryInterface
	Dataset() DatasetRepositoryInterface
}

// RunRepositoryInterface defines training run logging operations
type RunRepositoryInterface interface {
	LogRun(ctx context.Context, run *models.TrainingRun) error
	GetRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error)
}

// StepRepositoryInterface defines per-step logging operations
type StepRepositoryInterface interface {
	LogStep(ctx context.Context, step *models.StepLog) error
	GetSteps(ctx context.Context, runID string, limit int) ([]*models.StepLog, error)
}

// EventRepositoryInterface defines event logging operations
type EventRepositoryInterface interface {
	LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error
}

// DatasetRepositoryInterface defines file-backed dataset storage operations
type DatasetRepositoryInterface interface {
	CreateDataset(dir, name string, records []byte) (*models.DatasetInfo, error)
	GetDataset(dir, name string) ([]byte, *models.DatasetInfo, error)
	DeleteDataset(dir, name string) error
	ListDatasets(dir string) ([]*models.DatasetInfo, error)
	DatasetPath(dir, name string) string
}
