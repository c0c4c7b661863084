package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aigoflow/training-service/internal/config"
)

type MonitoringService struct {
	nats         *nats.Conn
	config       *config.Config
	pendingCount int64 // atomic counter
	activeCount  int64 // atomic counter for runs in progress
}

// ProgressReport is published on the monitoring topic while the worker
// has queued or running jobs.
type ProgressReport struct {
	ModelName   string    `json:"model_name"`
	PendingRuns int64     `json:"pending_runs"`
	ActiveRuns  int64     `json:"active_runs"`
	Timestamp   time.Time `json:"timestamp"`
	WorkerCount int       `json:"worker_count"`
	QueueDepth  int       `json:"queue_depth"`
	Status      string    `json:"status"` // idle, training, backlogged
}

func NewMonitoringService(natsConn *nats.Conn, cfg *config.Config) *MonitoringService {
	return &MonitoringService{
		nats:   natsConn,
		config: cfg,
	}
}

func (m *MonitoringService) Start(ctx context.Context) error {
	slog.Info("Starting monitoring service",
		"topic", m.config.MonitoringTopic,
		"interval", m.config.MonitoringInterval)

	go m.monitorProgress(ctx)

	return nil
}

func (m *MonitoringService) monitorProgress(ctx context.Context) {
	ticker := time.NewTicker(m.config.MonitoringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending := atomic.LoadInt64(&m.pendingCount)
			active := atomic.LoadInt64(&m.activeCount)
			m.reportProgress(pending, active)
		}
	}
}

func (m *MonitoringService) reportProgress(pending, active int64) {
	report := ProgressReport{
		ModelName:   m.config.ModelName,
		PendingRuns: pending,
		ActiveRuns:  active,
		Timestamp:   time.Now(),
		WorkerCount: m.config.Concurrency,
		QueueDepth:  m.config.MaxMsgs,
		Status:      m.calculateStatus(pending, active),
	}

	reportData, err := json.Marshal(report)
	if err != nil {
		slog.Error("Failed to marshal progress report", "error", err)
		return
	}

	topic := fmt.Sprintf("%s.%s", m.config.MonitoringTopic, m.config.ModelName)
	if err := m.nats.Publish(topic, reportData); err != nil {
		slog.Warn("Failed to publish progress report", "error", err)
		return
	}

	if active > 0 || pending > 0 {
		slog.Info("Progress report",
			"pending", pending,
			"active", active,
			"status", report.Status)
	}
}

func (m *MonitoringService) calculateStatus(pending, active int64) string {
	switch {
	case active == 0 && pending == 0:
		return "idle"
	case pending > int64(m.config.Concurrency):
		return "backlogged"
	default:
		return "training"
	}
}

// IncrementPending atomically increments the queued-run count
func (m *MonitoringService) IncrementPending() {
	atomic.AddInt64(&m.pendingCount, 1)
}

// DecrementPending atomically decrements the queued-run count
func (m *MonitoringService) DecrementPending() {
	atomic.AddInt64(&m.pendingCount, -1)
}

// IncrementActive atomically increments the running count
func (m *MonitoringService) IncrementActive() {
	atomic.AddInt64(&m.activeCount, 1)
}

// DecrementActive atomically decrements the running count
func (m *MonitoringService) DecrementActive() {
	atomic.AddInt64(&m.activeCount, -1)
}

// GetPendingCount returns the current queued-run count
func (m *MonitoringService) GetPendingCount() int64 {
	return atomic.LoadInt64(&m.pendingCount)
}

// GetActiveCount returns the current running count
func (m *MonitoringService) GetActiveCount() int64 {
	return atomic.LoadInt64(&m.activeCount)
}
