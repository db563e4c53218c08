package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/realtime"
	"github.com/example/task-tracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Shared Task Tracker ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	authModule := auth.NewModule(cfg, logger)
	taskModule := task.NewModule(cfg, logger)
	realtimeModule := realtime.NewModule(cfg, logger)
	apiModule := api.NewModule(cfg, logger)

	// The router is not exposed via ServiceContainer.
	apiModule.SetRouter(realtimeModule.Router())
	apiModule.SetHealthCheck(func(ctx context.Context) bool {
		return app.Health(ctx).Healthy
	})

	// Order: auth, then task (depends on auth), then the realtime consumer,
	// then the API which depends on auth and task.
	for _, m := range []mono.Module{authModule, taskModule, realtimeModule, apiModule} {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register module %s: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	relay := "disabled (single instance)"
	if cfg.RelayEnabled() {
		relay = "redis://" + cfg.RedisAddr + " channel " + cfg.RedisChannel
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  - Database: %s", cfg.DBPath)
	log.Printf("  - Notification relay: %s", relay)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  POST   /api/v1/auth/register     - Create an account")
	log.Println("  POST   /api/v1/auth/login        - Obtain an identity token")
	log.Println("  GET    /api/v1/me                - Current user")
	log.Println("  GET    /api/v1/tasks/my          - Tasks I created")
	log.Println("  GET    /api/v1/tasks/assigned    - Tasks assigned to me")
	log.Println("  POST   /api/v1/tasks             - Create a task")
	log.Println("  GET    /api/v1/tasks/:id         - Get a task")
	log.Println("  PATCH  /api/v1/tasks/:id         - Update title, description or status")
	log.Println("  PUT    /api/v1/tasks/:id/toggle  - Toggle status")
	log.Println("  DELETE /api/v1/tasks/:id         - Delete a task")
	log.Println("  GET    /health                   - Health check")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws?token=<token>):", cfg.Port)
	log.Println("  Send {\"type\":\"join\"} to start receiving task notifications")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
