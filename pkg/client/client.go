package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
)

// BackendClient drives the external inference/optimizer backend over
// NATS: completion sampling, step dispatch, and run submission.
type BackendClient interface {
	// Sampling
	Sample(ctx context.Context, model, input string, params map[string]interface{}) (*InferenceResponse, error)
	SampleN(ctx context.Context, model, input string, n int, params map[string]interface{}) ([]string, error)

	// Training steps
	Step(ctx context.Context, model string, req StepRequest) (*StepResponse, error)

	// Run queue
	SubmitRun(ctx context.Context, subject string, job RunJob) (string, error)

	// Lifecycle
	Close() error
}

// NATSBackendClient implements BackendClient on a plain NATS connection
type NATSBackendClient struct {
	conn          *nats.Conn
	clientID      string
	samplePrefix  string
	stepPrefix    string
	sampleTimeout time.Duration
	stepTimeout   time.Duration
}

type Option func(*NATSBackendClient)

func WithTimeouts(sample, step time.Duration) Option {
	return func(c *NATSBackendClient) {
		c.sampleTimeout = sample
		c.stepTimeout = step
	}
}

func WithSubjectPrefixes(sample, step string) Option {
	return func(c *NATSBackendClient) {
		c.samplePrefix = sample
		c.stepPrefix = step
	}
}

// NewNATSClient creates a backend client over a new NATS connection
func NewNATSClient(natsURL, clientID string, opts ...Option) (BackendClient, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if clientID == "" {
		clientID = "training-client"
	}

	c := &NATSBackendClient{
		conn:          conn,
		clientID:      clientID,
		samplePrefix:  "inference.request",
		stepPrefix:    "training.step",
		sampleTimeout: 120 * time.Second,
		stepTimeout:   300 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sample requests a single completion from the inference service.
func (c *NATSBackendClient) Sample(ctx context.Context, model, input string, params map[string]interface{}) (*InferenceResponse, error) {
	topic := fmt.Sprintf("%s.%s", c.samplePrefix, model)

	reqID := ulid.Make().String()
	replySubject := fmt.Sprintf("inference.response.%s.%s", c.clientID, reqID)

	request := InferenceRequest{
		ReqID:   reqID,
		Input:   input,
		Params:  params,
		ReplyTo: replySubject,
	}

	var response InferenceResponse
	if err := c.roundTrip(ctx, topic, replySubject, request, &response, c.sampleTimeout); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("inference error: %s", response.Error)
	}
	return &response, nil
}

// SampleN requests n completions for the same prompt, in order.
// Sampling params must carry a nonzero temperature or every member of
// the group comes back identical and its advantages vanish.
func (c *NATSBackendClient) SampleN(ctx context.Context, model, input string, n int, params map[string]interface{}) ([]string, error) {
	completions := make([]string, n)
	for i := 0; i < n; i++ {
		resp, err := c.Sample(ctx, model, input, params)
		if err != nil {
			return nil, fmt.Errorf("completion %d/%d: %w", i+1, n, err)
		}
		completions[i] = resp.Text
	}
	return completions, nil
}

// Step dispatches one training step to the backend and waits for loss.
func (c *NATSBackendClient) Step(ctx context.Context, model string, req StepRequest) (*StepResponse, error) {
	topic := fmt.Sprintf("%s.%s", c.stepPrefix, model)

	if req.ReqID == "" {
		req.ReqID = ulid.Make().String()
	}
	replySubject := fmt.Sprintf("training.response.%s.%s", c.clientID, req.ReqID)
	req.ReplyTo = replySubject

	var response StepResponse
	if err := c.roundTrip(ctx, topic, replySubject, req, &response, c.stepTimeout); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("step error: %s", response.Error)
	}
	return &response, nil
}

// SubmitRun publishes a run job onto the work queue subject and
// returns the assigned run ID.
func (c *NATSBackendClient) SubmitRun(ctx context.Context, subject string, job RunJob) (string, error) {
	if job.RunID == "" {
		job.RunID = ulid.Make().String()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run job: %w", err)
	}

	if err := c.conn.Publish(subject, data); err != nil {
		return "", fmt.Errorf("failed to publish run job: %w", err)
	}
	return job.RunID, c.conn.Flush()
}

// roundTrip subscribes to the reply subject, publishes the request, and
// waits for a single response within the timeout.
func (c *NATSBackendClient) roundTrip(ctx context.Context, topic, replySubject string, request, response interface{}, timeout time.Duration) error {
	sub, err := c.conn.SubscribeSync(replySubject)
	if err != nil {
		return fmt.Errorf("failed to subscribe to reply subject: %w", err)
	}
	defer sub.Unsubscribe()

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	msg, err := sub.NextMsg(time.Until(deadline))
	if err != nil {
		return fmt.Errorf("timeout waiting for response on %s: %w", replySubject, err)
	}

	if err := json.Unmarshal(msg.Data, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *NATSBackendClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
