package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Module consumes task events and routes each one to its recipient's
// realtime channel, optionally through a Redis relay shared by all instances.
type Module struct {
	cfg         config.Config
	router      *Router
	client      *redis.Client
	relay       *Relay
	cancelRelay context.CancelFunc
	logger      types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new realtime module.
func NewModule(cfg config.Config, logger types.Logger) *Module {
	logger = logger.WithModule("realtime")
	return &Module{
		cfg:    cfg,
		router: NewRouter(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "realtime"
}

// Router returns the router whose WebSocket handler the API module mounts.
func (m *Module) Router() *Router {
	return m.router
}

// RegisterEventConsumers subscribes to the task events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskEvent, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskEvent, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskEvent, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

// Start connects the Redis relay when configured. An unreachable Redis
// leaves the module delivering to local connections only.
func (m *Module) Start(ctx context.Context) error {
	if !m.cfg.RelayEnabled() {
		m.logger.Info("Module started", "relay", "disabled")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.cfg.RedisAddr,
		Password:     m.cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	relay := NewRelay(m.client, m.cfg.RedisChannel, m.router, m.logger)

	if err := relay.Ping(ctx); err != nil {
		m.logger.Warn("Redis relay unavailable, delivering locally only", "addr", m.cfg.RedisAddr, "error", err)
		_ = m.client.Close()
		m.client = nil
		return nil
	}

	relayCtx, cancel := context.WithCancel(context.Background())
	run, err := relay.Subscribe(relayCtx)
	if err != nil {
		cancel()
		m.logger.Warn("Redis relay subscribe failed, delivering locally only", "error", err)
		_ = m.client.Close()
		m.client = nil
		return nil
	}

	m.relay = relay
	m.cancelRelay = cancel
	go run()

	m.logger.Info("Module started", "relay", m.cfg.RedisAddr, "channel", m.cfg.RedisChannel)
	return nil
}

// Stop shuts down the relay.
func (m *Module) Stop(_ context.Context) error {
	if m.cancelRelay != nil {
		m.cancelRelay()
	}
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Warn("Error closing Redis connection", "error", err)
		}
	}
	m.logger.Info("Module stopped", "connected_users", m.router.Connected())
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	details := map[string]any{
		"connected_users": m.router.Connected(),
		"relay":           m.relay != nil,
	}

	if m.relay != nil {
		if err := m.relay.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("redis relay ping failed: %v", err),
				Details: details,
			}
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// handleTaskEvent never fails: notifications are not retried.
func (m *Module) handleTaskEvent(ctx context.Context, event events.TaskEvent, _ *mono.Msg) error {
	m.deliver(ctx, event)
	return nil
}

func (m *Module) deliver(ctx context.Context, event events.TaskEvent) {
	if event.RecipientID == "" {
		return
	}

	if m.relay != nil {
		err := m.relay.Publish(ctx, event)
		if err == nil {
			return
		}
		m.logger.Warn("Relay publish failed, delivering locally", "task_id", event.TaskID, "error", err)
	}

	if !m.router.NotifyOne(event.RecipientID, toEventFrame(event)) {
		m.logger.Debug("Notification dropped", "type", event.Type, "task_id", event.TaskID, "recipient_id", event.RecipientID)
	}
}
