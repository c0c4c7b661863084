package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aigoflow/training-service/internal/handlers"
	"github.com/aigoflow/training-service/internal/services"
)

type Server struct {
	httpAddr        string
	trainingService *services.TrainingService
	submitter       handlers.RunSubmitter
}

func NewServer(httpAddr string, trainingService *services.TrainingService, submitter handlers.RunSubmitter) *Server {
	return &Server{
		httpAddr:        httpAddr,
		trainingService: trainingService,
		submitter:       submitter,
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	runsHandler := handlers.NewRunsHandler(s.trainingService, s.submitter)
	runsHandler.RegisterRoutes(mux)
	slog.Info("Registered training endpoints", "endpoints", []string{"/v1/training/runs", "/healthz", "/logs"})

	datasetsHandler := handlers.NewDatasetsHandler(s.trainingService.GetRepository().Dataset())
	datasetsHandler.RegisterRoutes(mux)
	slog.Info("Registered dataset endpoints", "endpoints", []string{"/v1/datasets/"})

	server := &http.Server{
		Addr:    s.httpAddr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	slog.Info("HTTP server starting", "addr", s.httpAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
