package models

import "time"

// Run statuses move queued -> running -> completed | failed.
const (
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Methods supported by the trainer.
const (
	MethodSFT  = "sft"
	MethodGRPO = "grpo"
)

// TrainingRun represents one logged fine-tuning run
type TrainingRun struct {
	RunID      string    `json:"run_id"`
	TraceID    string    `json:"trace_id"`
	WorkerID   string    `json:"worker_id"`
	Source     string    `json:"source"`
	Method     string    `json:"method"`
	ModelName  string    `json:"model_name"`
	Dataset    string    `json:"dataset"`
	ParamsJSON string    `json:"params_json"`
	Started    time.Time `json:"started"`
	DurationMs float64   `json:"dur_ms"`
	Steps      int       `json:"steps"`
	FinalLoss  float64   `json:"final_loss"`
	MeanReward float64   `json:"mean_reward"`
	Status     string    `json:"status"`
	Error      string    `json:"error"`
}

// StepLog represents one logged optimizer or policy-update step
type StepLog struct {
	RunID      string    `json:"run_id"`
	Step       int       `json:"step"`
	Epoch      int       `json:"epoch"`
	Timestamp  time.Time `json:"ts"`
	Loss       float64   `json:"loss"`
	MeanReward float64   `json:"mean_reward"`
	RewardStd  float64   `json:"reward_std"`
	MaxReward  float64   `json:"max_reward"`
	TokensIn   int       `json:"tokens_in"`
	TokensOut  int       `json:"tokens_out"`
	DurationMs float64   `json:"dur_ms"`
}

// DatasetInfo describes a file-backed dataset under the data root
type DatasetInfo struct {
	Name      string    `json:"name"`
	Directory string    `json:"directory"`
	Records   int       `json:"records"`
	Size      int64     `json:"size"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}
