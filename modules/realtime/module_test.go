package realtime

import (
	"context"
	"testing"

	"github.com/example/task-tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Name(t *testing.T) {
	m := NewModule(config.Default(), &mockLogger{})
	assert.Equal(t, "realtime", m.Name())
}

func TestModule_LocalDelivery(t *testing.T) {
	m := NewModule(config.Default(), &mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(context.Background()) }()

	bob := &fakeConn{}
	carol := &fakeConn{}
	m.Router().Join(NewChannel(identity("bob"), bob))
	m.Router().Join(NewChannel(identity("carol"), carol))

	err := m.handleTaskEvent(context.Background(), sampleEvent("bob"), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bob.count())
	assert.Equal(t, 0, carol.count())
}

func TestModule_EventForOfflineUserSucceeds(t *testing.T) {
	m := NewModule(config.Default(), &mockLogger{})

	err := m.handleTaskEvent(context.Background(), sampleEvent("nobody"), nil)
	assert.NoError(t, err)
}

func TestModule_UnreachableRedisFallsBackToLocal(t *testing.T) {
	cfg := config.Default()
	cfg.RedisAddr = "127.0.0.1:1"

	m := NewModule(cfg, &mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(context.Background()) }()

	bob := &fakeConn{}
	m.Router().Join(NewChannel(identity("bob"), bob))
	require.NoError(t, m.handleTaskEvent(context.Background(), sampleEvent("bob"), nil))
	assert.Equal(t, 1, bob.count())

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, false, health.Details["relay"])
	assert.Equal(t, 1, health.Details["connected_users"])
}
