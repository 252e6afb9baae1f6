package repositories

import (
	"testing"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	userID, err := repo.CreateUser("alice@example.com", "$argon2id$fake", "Alice")
	req.NoError(err)
	req.NotEmpty(userID)

	user, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(userID, user.ID)
	req.Equal("Alice", user.DisplayName)
	req.Equal("$argon2id$fake", user.PasswordHash)
	req.Equal(domain.RoleUser, user.Role)
	req.False(user.CreatedAt.IsZero())
}

func TestUserRepository_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.CreateUser("alice@example.com", "hash-1", "Alice")
	req.NoError(err)

	_, err = repo.CreateUser("alice@example.com", "hash-2", "Imposter")
	req.ErrorIs(err, errs.ErrUserAlreadyExists)
}

func TestUserRepository_Unknown_Email(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetUserByEmail("ghost@example.com")
	req.Error(err)
}
