package simplegallery_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

func TestRegisterUser(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("Register", func(t *testing.T) {
		user, err := svc.RegisterUser(ctx, simplegallery.RegisterUserRequest{
			Username: "alice",
			Password: "correct horse",
		})
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, simplegallery.RoleUser, user.Role)
		assert.NotEmpty(t, user.Salt)
		assert.NotEmpty(t, user.DerivedHash)
		assert.NotEqual(t, uuid.Nil, user.ID)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := svc.RegisterUser(ctx, simplegallery.RegisterUserRequest{
			Username: "alice",
			Password: "different",
		})
		assert.ErrorIs(t, err, simplegallery.ErrDuplicateUsername)
	})

	t.Run("InvalidUsernames", func(t *testing.T) {
		for _, name := range []string{"", "a", "user name", "this-name-is-way-too-long-for-us", "tab\tname"} {
			_, err := svc.RegisterUser(ctx, simplegallery.RegisterUserRequest{
				Username: name,
				Password: "irrelevant",
			})
			assert.ErrorIs(t, err, simplegallery.ErrInvalidUsername, "username %q", name)
		}
	})

	t.Run("UsernamesAreCaseSensitive", func(t *testing.T) {
		_, err := svc.RegisterUser(ctx, simplegallery.RegisterUserRequest{
			Username: "Alice",
			Password: "another",
		})
		assert.NoError(t, err)
	})

	t.Run("SaltsDiffer", func(t *testing.T) {
		u1 := registerUser(t, svc, "salty1")
		u2 := registerUser(t, svc, "salty2")
		assert.NotEqual(t, u1.Salt, u2.Salt)
	})
}

func TestVerifyUser(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, simplegallery.RegisterUserRequest{
		Username: "alice",
		Password: "correct horse",
	})
	require.NoError(t, err)

	t.Run("CorrectPassword", func(t *testing.T) {
		id, err := svc.VerifyUser(ctx, "alice", "correct horse")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		id, err := svc.VerifyUser(ctx, "alice", "battery staple")
		assert.ErrorIs(t, err, simplegallery.ErrInvalidCredentials)
		assert.Equal(t, uuid.Nil, id)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		// Same error as a wrong password so the response does not reveal
		// which usernames exist.
		id, err := svc.VerifyUser(ctx, "nobody", "whatever")
		assert.ErrorIs(t, err, simplegallery.ErrInvalidCredentials)
		assert.Equal(t, uuid.Nil, id)
	})
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("ProvisionsFreshAdmin", func(t *testing.T) {
		svc := setupTestService(t)

		admin, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
			Username: "root",
			Secret:   "s3cret",
		})
		assert.NoError(t, err)
		assert.Equal(t, simplegallery.RoleAdmin, admin.Role)

		// The secret works as the admin password.
		id, err := svc.VerifyUser(ctx, "root", "s3cret")
		assert.NoError(t, err)
		assert.Equal(t, admin.ID, id)
	})

	t.Run("ElevatesExistingAccount", func(t *testing.T) {
		svc := setupTestService(t)
		existing := registerUser(t, svc, "root")

		admin, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
			Username: "root",
			Secret:   "unused",
		})
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, admin.ID)
		assert.Equal(t, simplegallery.RoleAdmin, admin.Role)

		// The original password still works; the secret is not a password for
		// an account that already existed.
		id, err := svc.VerifyUser(ctx, "root", "root-password")
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, id)
	})

	t.Run("Idempotent", func(t *testing.T) {
		svc := setupTestService(t)

		first, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
			Username: "root",
			Secret:   "s3cret",
		})
		require.NoError(t, err)

		second, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
			Username: "root",
			Secret:   "ignored",
		})
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("MissingUsername", func(t *testing.T) {
		svc := setupTestService(t)
		_, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{Secret: "s3cret"})
		assert.Error(t, err)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		svc := setupTestService(t)
		_, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{Username: "root"})
		assert.Error(t, err)
	})
}
