package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/internal/models"
)

// HealthService answers discovery requests and publishes heartbeats so
// clients can find the trainer for a given model.
type HealthService struct {
	nats       *nats.Conn
	config     *config.Config
	monitoring *MonitoringService
}

type HealthStatus struct {
	ModelName    string    `json:"model_name"`
	Status       string    `json:"status"` // online, busy
	LastActivity time.Time `json:"last_activity"`
	Methods      []string  `json:"methods"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	Version      string    `json:"version"`
}

func NewHealthService(natsConn *nats.Conn, cfg *config.Config, monitoring *MonitoringService) *HealthService {
	return &HealthService{
		nats:       natsConn,
		config:     cfg,
		monitoring: monitoring,
	}
}

func (h *HealthService) Start(ctx context.Context) error {
	healthTopic := fmt.Sprintf("trainers.%s.health", h.config.ModelName)

	_, err := h.nats.Subscribe(healthTopic, func(msg *nats.Msg) {
		status := h.getHealthStatus()

		statusData, err := json.Marshal(status)
		if err != nil {
			slog.Error("Failed to marshal health status", "error", err)
			return
		}

		if err := msg.Respond(statusData); err != nil {
			slog.Error("Failed to respond to health check", "error", err)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to subscribe to health topic: %w", err)
	}

	slog.Info("Health service started", "topic", healthTopic)

	go h.publishHeartbeats(ctx)

	return nil
}

func (h *HealthService) publishHeartbeats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	heartbeatTopic := fmt.Sprintf("trainers.%s.heartbeat", h.config.ModelName)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := h.getHealthStatus()
			statusData, err := json.Marshal(status)
			if err != nil {
				continue
			}

			if err := h.nats.Publish(heartbeatTopic, statusData); err != nil {
				slog.Warn("Failed to publish heartbeat", "error", err)
			}
		}
	}
}

func (h *HealthService) getHealthStatus() HealthStatus {
	status := "online"
	if h.monitoring != nil && h.monitoring.GetActiveCount() > 0 {
		status = "busy"
	}

	return HealthStatus{
		ModelName:    h.config.ModelName,
		Status:       status,
		LastActivity: time.Now(),
		Methods:      []string{models.MethodSFT, models.MethodGRPO},
		Endpoint:     h.config.HTTPAddr,
		NATSTopic:    h.config.Subject,
		Version:      "1.0.0",
	}
}
