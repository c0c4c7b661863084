package client

// InferenceRequest is the wire shape the inference service consumes.
type InferenceRequest struct {
	TraceID string                 `json:"trace_id,omitempty"`
	ReqID   string                 `json:"req_id"`
	Input   string                 `json:"input"`
	Params  map[string]interface{} `json:"params"`
	ReplyTo string                 `json:"reply_to,omitempty"`
	Raw     bool                   `json:"raw,omitempty"`
}

// InferenceResponse is the inference service's reply.
type InferenceResponse struct {
	ReqID        string `json:"req_id"`
	Text         string `json:"text"`
	TokensIn     int    `json:"tokens_in"`
	TokensOut    int    `json:"tokens_out"`
	FinishReason string `json:"finish_reason"`
	DurationMs   int64  `json:"duration_ms"`
	Error        string `json:"error,omitempty"`
}

// StepRequest carries one optimizer or policy-update step to the
// training backend. For SFT steps Sequences and the optimizer knobs are
// set; for GRPO steps Completions and Advantages travel alongside their
// prompt, one entry per sampled completion.
type StepRequest struct {
	TraceID     string                 `json:"trace_id,omitempty"`
	ReqID       string                 `json:"req_id"`
	RunID       string                 `json:"run_id"`
	Method      string                 `json:"method"`
	Sequences   []string               `json:"sequences,omitempty"`
	Prompt      string                 `json:"prompt,omitempty"`
	Completions []string               `json:"completions,omitempty"`
	Advantages  []float64              `json:"advantages,omitempty"`
	Params      map[string]interface{} `json:"params"`
	ReplyTo     string                 `json:"reply_to,omitempty"`
}

// StepResponse is the backend's reply to a step dispatch.
type StepResponse struct {
	ReqID      string  `json:"req_id"`
	Loss       float64 `json:"loss"`
	TokensIn   int     `json:"tokens_in"`
	GradNorm   float64 `json:"grad_norm"`
	DurationMs int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// RunJob is a training run submitted to the work queue.
type RunJob struct {
	TraceID   string                 `json:"trace_id,omitempty"`
	RunID     string                 `json:"run_id"`
	Method    string                 `json:"method"`
	ModelName string                 `json:"model_name"`
	Dataset   string                 `json:"dataset"`
	Params    map[string]interface{} `json:"params"`
	ReplyTo   string                 `json:"reply_to,omitempty"`
}

// RunResult is published on the job's reply subject when a run ends.
type RunResult struct {
	RunID      string  `json:"run_id"`
	Status     string  `json:"status"`
	Steps      int     `json:"steps"`
	FinalLoss  float64 `json:"final_loss"`
	MeanReward float64 `json:"mean_reward"`
	DurationMs int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}
