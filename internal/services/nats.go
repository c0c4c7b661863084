package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"

	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/pkg/client"
)

// generateWorkerID creates a unique worker ID using timestamp and random bytes
func generateWorkerID() string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	randomHex := hex.EncodeToString(randomBytes)
	return fmt.Sprintf("trainer-%d-%s", timestamp, randomHex)
}

func generateRunID() string {
	return ulid.Make().String()
}

// NATSService consumes training run jobs from a JetStream work queue.
type NATSService struct {
	conn            *nats.Conn
	js              nats.JetStreamContext
	trainingService *TrainingService
	cfg             *config.Config
	monitoring      *MonitoringService
}

func NewNATSService(cfg *config.Config, trainingService *TrainingService) (*NATSService, error) {
	conn, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSService{
		conn:            conn,
		js:              js,
		trainingService: trainingService,
		cfg:             cfg,
		monitoring:      NewMonitoringService(conn, cfg),
	}, nil
}

func (s *NATSService) Start(ctx context.Context) error {
	if err := s.ensureStream(); err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	consumer, err := s.createConsumer()
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slog.Info("NATS service starting",
		"stream", s.cfg.Stream,
		"subject", s.cfg.Subject,
		"consumer", s.cfg.Durable,
		"concurrency", s.cfg.Concurrency)

	go s.monitoring.Start(ctx)

	// Training runs are long-lived, so concurrency usually stays at 1:
	// the backend serializes optimizer steps anyway.
	for i := 0; i < s.cfg.Concurrency; i++ {
		workerID := generateWorkerID()
		go s.worker(ctx, consumer, workerID)
	}

	<-ctx.Done()
	slog.Info("NATS service shutting down")

	s.conn.Close()
	return nil
}

func (s *NATSService) ensureStream() error {
	streamInfo, err := s.js.StreamInfo(s.cfg.Stream)
	if err != nil {
		if err == nats.ErrStreamNotFound {
			_, err = s.js.AddStream(&nats.StreamConfig{
				Name:      s.cfg.Stream,
				Subjects:  []string{s.cfg.Subject},
				MaxMsgs:   int64(s.cfg.MaxMsgs),
				MaxAge:    s.cfg.MaxAge,
				Storage:   nats.FileStorage,
				Retention: nats.WorkQueuePolicy,
			})
			if err != nil {
				return fmt.Errorf("failed to create stream: %w", err)
			}
			slog.Info("Created NATS stream", "name", s.cfg.Stream)
		} else {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
	} else {
		hasSubject := false
		for _, subject := range streamInfo.Config.Subjects {
			if subject == s.cfg.Subject {
				hasSubject = true
				break
			}
		}

		if !hasSubject {
			newConfig := streamInfo.Config
			newConfig.Subjects = append(newConfig.Subjects, s.cfg.Subject)
			_, err = s.js.UpdateStream(&newConfig)
			if err != nil {
				return fmt.Errorf("failed to update stream with new subject: %w", err)
			}
			slog.Info("Updated NATS stream with new subject", "name", s.cfg.Stream, "subject", s.cfg.Subject)
		} else {
			slog.Info("NATS stream already exists", "name", s.cfg.Stream, "messages", streamInfo.State.Msgs)
		}
	}

	return nil
}

func (s *NATSService) createConsumer() (*nats.Subscription, error) {
	sub, err := s.js.PullSubscribe(s.cfg.Subject, s.cfg.Durable, nats.ManualAck())
	if err != nil {
		return nil, fmt.Errorf("failed to create pull consumer: %w", err)
	}

	slog.Info("Created NATS consumer", "durable", s.cfg.Durable)
	return sub, nil
}

func (s *NATSService) worker(ctx context.Context, consumer *nats.Subscription, workerID string) {
	slog.Info("NATS worker starting", "worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("NATS worker shutting down", "worker_id", workerID)
			return
		default:
			msgs, err := consumer.Fetch(1, nats.MaxWait(time.Second))
			if err != nil {
				if err == nats.ErrTimeout {
					continue // Normal timeout, continue polling
				}
				slog.Error("Failed to fetch messages", "worker_id", workerID, "error", err)
				time.Sleep(time.Second) // Back off on error
				continue
			}

			for _, msg := range msgs {
				s.monitoring.IncrementPending()
				s.processRunMessage(ctx, msg, workerID)
				s.monitoring.DecrementPending()
			}
		}
	}
}

func (s *NATSService) processRunMessage(ctx context.Context, msg *nats.Msg, workerID string) {
	s.monitoring.IncrementActive()
	defer s.monitoring.DecrementActive()

	start := time.Now()

	var job client.RunJob
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		slog.Error("Failed to parse run job",
			"worker_id", workerID,
			"error", err,
			"data", string(msg.Data))
		msg.Nak()
		return
	}

	if job.TraceID == "" {
		job.TraceID = job.RunID
	}

	slog.Debug("Processing NATS training job",
		"worker_id", workerID,
		"run_id", job.RunID,
		"trace_id", job.TraceID,
		"subject", msg.Subject)

	// A run can outlive the consumer's ack window, so progress the ack
	// deadline while it executes.
	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.cfg.AckWait / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stopProgress:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					slog.Warn("Failed to extend ack deadline", "worker_id", workerID, "error", err)
				}
			}
		}
	}()

	result, err := s.trainingService.ProcessRun(
		ctx,
		job,
		fmt.Sprintf("nats.%s", msg.Subject),
		workerID,
	)
	close(stopProgress)

	resultData, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		slog.Error("Failed to marshal run result",
			"worker_id", workerID,
			"run_id", job.RunID,
			"error", marshalErr)
		msg.Nak()
		return
	}

	if job.ReplyTo != "" {
		if publishErr := s.conn.Publish(job.ReplyTo, resultData); publishErr != nil {
			slog.Error("Failed to publish run result",
				"worker_id", workerID,
				"run_id", job.RunID,
				"reply_subject", job.ReplyTo,
				"error", publishErr)
		}
	}

	if ackErr := msg.Ack(); ackErr != nil {
		slog.Error("Failed to acknowledge message",
			"worker_id", workerID,
			"run_id", job.RunID,
			"error", ackErr)
	}

	duration := time.Since(start)

	if err == nil {
		slog.Info("NATS training run completed",
			"worker_id", workerID,
			"run_id", job.RunID,
			"duration_ms", duration.Milliseconds(),
			"steps", result.Steps,
			"mean_reward", result.MeanReward)
	} else {
		slog.Error("NATS training run failed",
			"worker_id", workerID,
			"run_id", job.RunID,
			"duration_ms", duration.Milliseconds(),
			"error", err)
	}
}

// SubmitRun queues a run job on the work queue subject and returns the
// assigned run ID. Implements the HTTP handler's RunSubmitter.
func (s *NATSService) SubmitRun(job client.RunJob) (string, error) {
	if job.RunID == "" {
		job.RunID = generateRunID()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run job: %w", err)
	}

	if _, err := s.js.Publish(s.cfg.Subject, data); err != nil {
		return "", fmt.Errorf("failed to publish run job: %w", err)
	}

	slog.Info("Run job queued", "run_id", job.RunID, "method", job.Method, "subject", s.cfg.Subject)
	return job.RunID, nil
}

func (s *NATSService) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

func (s *NATSService) GetConnection() *nats.Conn {
	return s.conn
}

func (s *NATSService) GetMonitoringService() *MonitoringService {
	return s.monitoring
}
