package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedeck/submission-service/internal/models"
)

func newGroupFixture(t *testing.T, password string) (*memDB, GroupService) {
	t.Helper()

	db := newMemDB()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	db.groups["g1"] = models.Group{
		ID:               "g1",
		PasswordHash:     string(hash),
		Members:          "alice_bob",
		Project:          "-",
		CourseID:         1,
		SubmissionStatus: models.SubmissionStatusNotSubmitted.String(),
	}

	return db, NewGroupService(&fakeGroupRepo{db: db}, zerolog.Nop())
}

func TestGroupService_Authenticate(t *testing.T) {
	_, service := newGroupFixture(t, "secret")

	group, err := service.Authenticate(context.Background(), "g1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "g1", group.ID)

	_, err = service.Authenticate(context.Background(), "g1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown groups get the same error as a bad password.
	_, err = service.Authenticate(context.Background(), "ghost", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGroupService_UpdateProfile(t *testing.T) {
	db, service := newGroupFixture(t, "secret")

	err := service.UpdateProfile(context.Background(), &models.UpdateProfileRequest{
		GroupID: "g1",
		Project: "distributed cache",
		Members: []string{"alice", "bob", "", "carol"},
	})
	require.NoError(t, err)

	db.mu.Lock()
	group := db.groups["g1"]
	db.mu.Unlock()
	assert.Equal(t, "distributed cache", group.Project)
	assert.Equal(t, "alice_bob_carol", group.Members)

	err = service.UpdateProfile(context.Background(), &models.UpdateProfileRequest{GroupID: "ghost"})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupService_ChangePassword(t *testing.T) {
	_, service := newGroupFixture(t, "secret")

	err := service.ChangePassword(context.Background(), &models.ChangePasswordRequest{
		GroupID:     "g1",
		OldPassword: "wrong",
		NewPassword: "next",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = service.ChangePassword(context.Background(), &models.ChangePasswordRequest{
		GroupID:     "g1",
		OldPassword: "secret",
		NewPassword: "next",
	})
	require.NoError(t, err)

	_, err = service.Authenticate(context.Background(), "g1", "next")
	assert.NoError(t, err)
}
