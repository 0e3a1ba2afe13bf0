/*
Intelligent Dispatch & Journey Engine

boundary: Dispatch
service: dispatch-engine
*/
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shortlink-org/go-sdk/graceful_shutdown"

	agent_workflow "github.com/parcelhub/dispatch-engine/internal/agent/workflow"
	dispatch_di "github.com/parcelhub/dispatch-engine/internal/di"
)

// routingProbeInterval is how often the routing-provider liveness probe
// backing /health runs.
const routingProbeInterval = 2 * time.Minute

func main() {
	// Init a new service
	service, cleanup, err := dispatch_di.InitializeService()
	if err != nil {
		panic(err)
	}

	service.Log.Info("Service initialized")

	defer func() {
		if r := recover(); r != nil {
			service.Log.Error("panic recovered", slog.Any("error", r))
		}
	}()

	ctx, cancelBackground := context.WithCancel(context.Background())

	server := &http.Server{
		Addr:         service.Config.HTTP.Addr,
		Handler:      service.Router,
		ReadTimeout:  service.Config.HTTP.ReadTimeout,
		WriteTimeout: service.Config.HTTP.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			service.Log.Error("http server stopped", slog.Any("error", err))
		}
	}()

	go service.WarehouseSync.Run(ctx)
	go service.RoutingProber.Run(ctx, routingProbeInterval)

	tickWorker := agent_workflow.NewWorker(service.TemporalClient, service.AgentActivities, service.Log)
	if err := tickWorker.Start(); err != nil {
		service.Log.Error("temporal worker failed to start", slog.Any("error", err))
	}

	service.Log.Info("Service listening", slog.String("addr", service.Config.HTTP.Addr))

	// Handle SIGINT, SIGQUIT and SIGTERM.
	signal := graceful_shutdown.GracefulShutdown()

	tickWorker.Stop()
	cancelBackground()

	if err := server.Shutdown(context.Background()); err != nil {
		service.Log.Error("http server shutdown error", slog.Any("error", err))
	}

	cleanup()

	service.Log.Info("Service stopped", slog.String("signal", signal.String()))

	// Exit Code 143: Graceful Termination (SIGTERM)
	os.Exit(143) //nolint:gocritic // exit code 143 is used to indicate graceful termination
}
