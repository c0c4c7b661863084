package repository

import (
	"context"
	"time"

	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/internal/store"
)

// SQLiteRepository implements Repository using SQLite for logs and the
// filesystem for datasets
type SQLiteRepository struct {
	db          *store.DB
	runRepo     RunRepositoryInterface
	stepRepo    StepRepositoryInterface
	eventRepo   EventRepositoryInterface
	datasetRepo DatasetRepositoryInterface
}

func NewSQLiteRepository(db *store.DB, datasetRoot string) Repository {
	return &SQLiteRepository{
		db:          db,
		runRepo:     &SQLiteRunRepository{db: db},
		stepRepo:    &SQLiteStepRepository{db: db},
		eventRepo:   &SQLiteEventRepository{db: db},
		datasetRepo: NewDatasetRepository(datasetRoot),
	}
}

func (r *SQLiteRepository) Run() RunRepositoryInterface {
	return r.runRepo
}

func (r *SQLiteRepository) Step() StepRepositoryInterface {
	return r.stepRepo
}

func (r *SQLiteRepository) Event() EventRepositoryInterface {
	return r.eventRepo
}

func (r *SQLiteRepository) Dataset() DatasetRepositoryInterface {
	return r.datasetRepo
}

// SQLiteRunRepository handles training run logging
type SQLiteRunRepository struct {
	db *store.DB
}

func (r *SQLiteRunRepository) LogRun(ctx context.Context, run *models.TrainingRun) error {
	r.db.Run(
		run.Started,
		run.RunID,
		run.TraceID,
		run.WorkerID,
		run.Source,
		run.Method,
		run.ModelName,
		run.Dataset,
		run.ParamsJSON,
		run.Steps,
		run.FinalLoss,
		run.MeanReward,
		time.Duration(run.DurationMs)*time.Millisecond,
		run.Status,
		run.Error,
	)
	return nil
}

func (r *SQLiteRunRepository) GetRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error) {
	rows, err := r.db.Query(`SELECT ts,run_id,trace_id,worker_id,source,method,model_name,dataset,params_json,steps,final_loss,mean_reward,dur_ms,status,error FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.TrainingRun
	for rows.Next() {
		var run models.TrainingRun
		var tsFloat float64

		if err := rows.Scan(
			&tsFloat, &run.RunID, &run.TraceID, &run.WorkerID, &run.Source,
			&run.Method, &run.ModelName, &run.Dataset, &run.ParamsJSON,
			&run.Steps, &run.FinalLoss, &run.MeanReward,
			&run.DurationMs, &run.Status, &run.Error,
		); err == nil {
			run.Started = time.Unix(0, int64(tsFloat*1e9))
			runs = append(runs, &run)
		}
	}

	return runs, nil
}

// SQLiteStepRepository handles per-step logging
type SQLiteStepRepository struct {
	db *store.DB
}

func (r *SQLiteStepRepository) LogStep(ctx context.Context, step *models.StepLog) error {
	r.db.Step(
		step.Timestamp,
		step.RunID,
		step.Step,
		step.Epoch,
		step.Loss,
		step.MeanReward,
		step.RewardStd,
		step.MaxReward,
		step.TokensIn,
		step.TokensOut,
		time.Duration(step.DurationMs)*time.Millisecond,
	)
	return nil
}

func (r *SQLiteStepRepository) GetSteps(ctx context.Context, runID string, limit int) ([]*models.StepLog, error) {
	rows, err := r.db.Query(`SELECT ts,run_id,step,epoch,loss,mean_reward,reward_std,max_reward,tokens_in,tokens_out,dur_ms FROM steps WHERE run_id = ? ORDER BY step ASC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*models.StepLog
	for rows.Next() {
		var step models.StepLog
		var tsFloat float64

		if err := rows.Scan(
			&tsFloat, &step.RunID, &step.Step, &step.Epoch, &step.Loss,
			&step.MeanReward, &step.RewardStd, &step.MaxReward,
			&step.TokensIn, &step.TokensOut, &step.DurationMs,
		); err == nil {
			step.Timestamp = time.Unix(0, int64(tsFloat*1e9))
			steps = append(steps, &step)
		}
	}

	return steps, nil
}

// SQLiteEventRepository handles event logging
type SQLiteEventRepository struct {
	db *store.DB
}

func (r *SQLiteEventRepository) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	r.db.Event(level, code, msg, meta)
	return nil
}
