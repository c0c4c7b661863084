package config

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// NATS Configuration
	NatsURL        string
	Stream         string
	Subject        string
	Durable        string
	QueueGroup     string
	ResponsePrefix string
	MaxMsgs        int
	MaxAge         time.Duration
	AckWait        time.Duration
	MaxDeliver     int
	MaxAckPending  int
	Concurrency    int

	// Inference backend (sampling + optimizer steps)
	SampleSubjectPrefix string
	StepSubjectPrefix   string
	SampleTimeout       time.Duration
	StepTimeout         time.Duration

	// Monitoring
	MonitoringTopic    string
	MonitoringInterval time.Duration

	// HTTP Configuration
	HTTPAddr string

	// Training defaults (overridable per run)
	ModelName      string
	BatchSize      int
	GradAccumSteps int
	MaxSeqLen      int
	BF16           bool
	GradCheckpoint bool
	NumGenerations int
	LearningRate   float64
	Epochs         int
	Temperature    float64
	TopP           float64
	MaxNewTokens   int

	// Hub Configuration
	HubURL         string
	HubToken       string
	HubDatasetRepo string

	// Generation API (dataset synthesis)
	GenAPIURL string
	GenAPIKey string
	GenModel  string
	GenBatch  int

	// Data Directory Configuration
	DataDir string

	// Database Configuration
	DBPath string
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			slog.Warn("Could not load env file", "file", envFile, "error", err)
		} else {
			slog.Info("Environment loaded", "file", envFile)
		}
	}

	return &Config{
		NatsURL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		Stream:         getEnv("STREAM_NAME", "TRAIN"),
		Subject:        getEnv("SUBJECT", "training.run.default"),
		Durable:        getEnv("QUEUE_DURABLE", "train-wq"),
		QueueGroup:     getEnv("QUEUE_GROUP", "trainers"),
		ResponsePrefix: getEnv("RESPONSE_PREFIX", "training.reply"),
		MaxMsgs:        getEnvInt("QUEUE_MAX_MSGS", 500),
		MaxAge:         getEnvDuration("QUEUE_MAX_AGE", "24h"),
		AckWait:        getEnvDuration("ACK_WAIT", "10m"),
		MaxDeliver:     getEnvInt("MAX_DELIVER", 2),
		MaxAckPending:  getEnvInt("MAX_ACK_PENDING", 4),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 1),

		SampleSubjectPrefix: getEnv("SAMPLE_SUBJECT_PREFIX", "inference.request"),
		StepSubjectPrefix:   getEnv("STEP_SUBJECT_PREFIX", "training.step"),
		SampleTimeout:       getEnvDuration("SAMPLE_TIMEOUT", "120s"),
		StepTimeout:         getEnvDuration("STEP_TIMEOUT", "300s"),

		MonitoringTopic:    getEnv("MONITORING_TOPIC", "training.monitoring"),
		MonitoringInterval: getEnvDuration("MONITORING_INTERVAL", "10s"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8082"),

		ModelName:      getEnv("MODEL_NAME", "default"),
		BatchSize:      getEnvInt("BATCH_SIZE", 8),
		GradAccumSteps: getEnvInt("GRAD_ACCUM_STEPS", 4),
		MaxSeqLen:      getEnvInt("MAX_SEQ_LEN", 1024),
		BF16:           getEnvBool("BF16", true),
		GradCheckpoint: getEnvBool("GRAD_CHECKPOINT", true),
		NumGenerations: getEnvInt("NUM_GENERATIONS", 8),
		LearningRate:   getEnvFloat("LEARNING_RATE", 1e-5),
		Epochs:         getEnvInt("EPOCHS", 1),
		Temperature:    getEnvFloat("TEMPERATURE", 0.9),
		TopP:           getEnvFloat("TOP_P", 1.0),
		MaxNewTokens:   getEnvInt("MAX_NEW_TOKENS", 512),

		HubURL:         getEnv("HUB_URL", "https://huggingface.co"),
		HubToken:       getEnv("HUB_TOKEN", ""),
		HubDatasetRepo: getEnv("HUB_DATASET_REPO", ""),

		GenAPIURL: getEnv("GEN_API_URL", "https://api.openai.com/v1/chat/completions"),
		GenAPIKey: getEnv("GEN_API_KEY", ""),
		GenModel:  getEnv("GEN_MODEL", "gpt-4o"),
		GenBatch:  getEnvInt("GEN_BATCH", 32),

		DataDir: getEnv("DATA_DIR", "data"),
		DBPath:  getEnv("DB_PATH", "data/trainer.sqlite"),
	}, nil
}

func loadDotEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key, defaultVal string) time.Duration {
	val := getEnv(key, defaultVal)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultVal)
	return d
}
