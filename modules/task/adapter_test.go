package task

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientModule receives the auth and task containers the way the API module does.
type clientModule struct {
	authContainer mono.ServiceContainer
	taskContainer mono.ServiceContainer
}

func (m *clientModule) Name() string                  { return "client" }
func (m *clientModule) Dependencies() []string        { return []string{"auth", "task"} }
func (m *clientModule) Start(_ context.Context) error { return nil }
func (m *clientModule) Stop(_ context.Context) error  { return nil }

func (m *clientModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
	case "task":
		m.taskContainer = container
	}
}

// startApp runs the auth and task modules on a mono application backed by a
// temporary SQLite file and returns adapters over their containers.
func startApp(t *testing.T) (*auth.AuthAdapter, *TaskAdapter) {
	t.Helper()

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "tasks.db")

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithShutdownTimeout(10*time.Second),
	)
	require.NoError(t, err)

	client := &clientModule{}
	require.NoError(t, app.Register(auth.NewModule(cfg, &mockLogger{})))
	require.NoError(t, app.Register(NewModule(cfg, &mockLogger{})))
	require.NoError(t, app.Register(client))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.authContainer)
	require.NotNil(t, client.taskContainer)
	return auth.NewAuthAdapter(client.authContainer), NewTaskAdapter(client.taskContainer)
}

func registerUser(t *testing.T, accounts auth.AccountPort, name string) string {
	t.Helper()
	resp, err := accounts.Register(context.Background(), auth.RegisterRequest{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.ID
}

func TestTaskAdapter_RoundTrip(t *testing.T) {
	authAdapter, tasks := startApp(t)
	ctx := context.Background()

	aliceID := registerUser(t, authAdapter, "Alice")
	bobID := registerUser(t, authAdapter, "Bob")
	carolID := registerUser(t, authAdapter, "Carol")

	_, err := tasks.Create(ctx, aliceID, CreateInput{Title: "Write report", AssigneeEmail: "nobody@example.com"})
	assert.ErrorIs(t, err, domain.ErrAssigneeNotFound)

	_, err = tasks.Create(ctx, aliceID, CreateInput{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	created, err := tasks.Create(ctx, aliceID, CreateInput{Title: "Write report", AssigneeEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
	require.NotNil(t, created.AssignedTo)
	assert.Equal(t, bobID, *created.AssignedTo)

	_, err = tasks.Delete(ctx, carolID, created.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.True(t, strings.HasPrefix(svcErr.Error(), domain.ErrUnauthorized.Error()), "detail = %q", svcErr.Error())

	_, err = tasks.Get(ctx, aliceID, "missing-task")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	blank := ""
	_, err = tasks.Update(ctx, bobID, created.ID, domain.Patch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = tasks.Update(ctx, aliceID, created.ID, domain.Patch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	toggled, err := tasks.ToggleStatus(ctx, bobID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, toggled.Status)

	assigned, err := tasks.ListAssigned(ctx, bobID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.NotNil(t, assigned[0].Creator)
	assert.Equal(t, "Alice", assigned[0].Creator.Name)
	assert.Equal(t, domain.StatusCompleted, assigned[0].Status)

	mine, err := tasks.ListMine(ctx, carolID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	id, err := tasks.Delete(ctx, aliceID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = tasks.ToggleStatus(ctx, bobID, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestAuthAdapter_RoundTrip(t *testing.T) {
	authAdapter, _ := startApp(t)
	ctx := context.Background()

	aliceID := registerUser(t, authAdapter, "Alice")

	login, err := authAdapter.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, aliceID, login.User.ID)

	userID, err := authAdapter.ValidateToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, aliceID, userID)

	_, err = authAdapter.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrMalformedToken)

	_, err = authAdapter.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), auth.ErrInvalidCredentials.Error())

	_, err = authAdapter.GetUser(ctx, "missing-user")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	profile, err := authAdapter.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)

	profiles, err := authAdapter.GetProfiles(ctx, []string{aliceID, "missing-user"})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, "alice@example.com", profiles[aliceID].Email)
}
