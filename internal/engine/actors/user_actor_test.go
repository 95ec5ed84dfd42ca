package actors

import (
	"testing"
	"time"

	"campus-gigs/internal/database"
	"campus-gigs/internal/middleware"
	"campus-gigs/internal/models"
	"campus-gigs/internal/types"
	"campus-gigs/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnUserSupervisor(t *testing.T, db database.Adapter) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	middleware.SetSecret("test-secret")

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserSupervisor(db)
	})
	return system, system.Root.Spawn(props)
}

func TestUserRegistrationAndLogin(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnUserSupervisor(t, db)

	regFuture := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		Role:     models.RoleStudent,
	}, 5*time.Second)
	regResult, err := regFuture.Result()
	require.NoError(t, err)

	user, ok := regResult.(*models.User)
	require.True(t, ok, "unexpected response: %T", regResult)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "password123", user.HashedPassword)

	loginFuture := system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "test@example.com",
		Password: "password123",
	}, 5*time.Second)
	loginResult, err := loginFuture.Result()
	require.NoError(t, err)

	loginResponse, ok := loginResult.(*types.LoginResponse)
	require.True(t, ok)
	assert.True(t, loginResponse.Success)
	assert.NotEmpty(t, loginResponse.Token)
	assert.Equal(t, user.ID.String(), loginResponse.UserID)

	badFuture := system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}, 5*time.Second)
	badResult, err := badFuture.Result()
	require.NoError(t, err)

	badResponse, ok := badResult.(*types.LoginResponse)
	require.True(t, ok)
	assert.False(t, badResponse.Success)
	assert.Equal(t, "Invalid credentials", badResponse.Error)
}

func TestRegistrationValidation(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnUserSupervisor(t, db)

	cases := []struct {
		name string
		msg  *RegisterUserMsg
	}{
		{"short password", &RegisterUserMsg{Username: "u", Email: "u@x.com", Password: "short", Role: models.RoleStudent}},
		{"bad email", &RegisterUserMsg{Username: "u", Email: "not-an-email", Password: "password123", Role: models.RoleStudent}},
		{"bad role", &RegisterUserMsg{Username: "u", Email: "u@x.com", Password: "password123", Role: "admin"}},
		{"empty username", &RegisterUserMsg{Username: "  ", Email: "u@x.com", Password: "password123", Role: models.RoleClient}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			future := system.Root.RequestFuture(pid, tc.msg, 5*time.Second)
			result, err := future.Result()
			require.NoError(t, err)

			appErr, ok := result.(*utils.AppError)
			require.True(t, ok, "unexpected response: %T", result)
			assert.Equal(t, utils.ErrValidation, appErr.Code)
		})
	}
}

func TestDuplicateEmailRegistration(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnUserSupervisor(t, db)

	msg := &RegisterUserMsg{
		Username: "first",
		Email:    "dup@example.com",
		Password: "password123",
		Role:     models.RoleClient,
	}
	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	_, ok := result.(*models.User)
	require.True(t, ok)

	future = system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "second",
		Email:    "dup@example.com",
		Password: "password456",
		Role:     models.RoleStudent,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserAlreadyExists, appErr.Code)
}

func TestProfileUpdate(t *testing.T) {
	db := database.NewMemoryAdapter()
	system, pid := spawnUserSupervisor(t, db)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "profiled",
		Email:    "p@example.com",
		Password: "password123",
		Role:     models.RoleStudent,
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	user := result.(*models.User)

	future = system.Root.RequestFuture(pid, &UpdateProfileMsg{
		UserID:     user.ID,
		Bio:        "I build scrapers",
		Skills:     []string{"go", "python"},
		HourlyRate: 35,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	updated, ok := result.(*models.User)
	require.True(t, ok, "unexpected response: %T", result)
	assert.Equal(t, "I build scrapers", updated.Bio)
	assert.Equal(t, []string{"go", "python"}, updated.Skills)
	assert.Equal(t, 35.0, updated.HourlyRate)
}
