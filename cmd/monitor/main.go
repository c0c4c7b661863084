package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
)

// TrainerStatus mirrors the trainer's heartbeat payload.
type TrainerStatus struct {
	ModelName    string    `json:"model_name"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
	Methods      []string  `json:"methods"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
}

// ProgressReport mirrors the trainer's monitoring payload.
type ProgressReport struct {
	ModelName   string    `json:"model_name"`
	PendingRuns int64     `json:"pending_runs"`
	ActiveRuns  int64     `json:"active_runs"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

func main() {
	var natsURL = flag.String("url", "nats://127.0.0.1:4222", "NATS server URL")
	flag.Parse()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	// Watch heartbeats from every trainer
	_, err = nc.Subscribe("trainers.*.heartbeat", func(msg *nats.Msg) {
		var status TrainerStatus
		if err := json.Unmarshal(msg.Data, &status); err != nil {
			log.Printf("Bad heartbeat on %s: %v", msg.Subject, err)
			return
		}
		fmt.Printf("[%s] trainer %-16s status=%-8s methods=%v endpoint=%s\n",
			time.Now().Format("15:04:05"), status.ModelName, status.Status, status.Methods, status.Endpoint)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to heartbeats: %v", err)
	}

	// Watch training progress reports
	_, err = nc.Subscribe("training.monitoring.*", func(msg *nats.Msg) {
		var report ProgressReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			log.Printf("Bad progress report on %s: %v", msg.Subject, err)
			return
		}
		if report.Status == "idle" {
			return
		}
		fmt.Printf("[%s] trainer %-16s %s: active=%d pending=%d\n",
			report.Timestamp.Format("15:04:05"), report.ModelName, report.Status,
			report.ActiveRuns, report.PendingRuns)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to progress reports: %v", err)
	}

	fmt.Printf("Monitoring trainers on %s (Ctrl-C to exit)\n", *natsURL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
