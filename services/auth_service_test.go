package services

import (
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeUserRepository struct {
	users map[string]repositories.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]repositories.User)}
}

func (r *fakeUserRepository) CreateUser(email, hashedPassword, displayName string) (string, error) {
	if _, exists := r.users[email]; exists {
		return "", errors.ErrUserAlreadyExists
	}
	user := repositories.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
	}
	r.users[email] = user
	return user.ID, nil
}

func (r *fakeUserRepository) GetUserByEmail(email string) (repositories.User, error) {
	user, exists := r.users[email]
	if !exists {
		return repositories.User{}, errors.ErrNotFound
	}
	return user, nil
}

func newTestAuthService() (IAuthService, *fakeUserRepository) {
	repo := newFakeUserRepository()
	tokens := auth.NewTokenManager("unit-test-secret", "chat-relay", time.Hour)
	return NewAuthService(repo, tokens), repo
}

func TestAuthService_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	service, repo := newTestAuthService()

	token, err := service.Register("alice@example.com", "ComplexPass123!", "Alice")
	req.NoError(err)
	req.NotEmpty(token)

	// The stored record never contains the plain password.
	stored := repo.users["alice@example.com"]
	req.NotEqual("ComplexPass123!", stored.PasswordHash)
	req.Contains(stored.PasswordHash, "$argon2id$")

	loginToken, err := service.Login("alice@example.com", "ComplexPass123!")
	req.NoError(err)

	user, err := service.Authenticate(loginToken.String())
	req.NoError(err)
	req.Equal(stored.ID, user.ID)
	req.Equal("Alice", user.DisplayName)
	req.Equal(domain.RoleUser, user.Role)
}

func TestAuthService_Register_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	service, _ := newTestAuthService()

	_, err := service.Register("alice@example.com", "ComplexPass123!", "Alice")
	req.NoError(err)

	_, err = service.Register("alice@example.com", "OtherComplex123!", "Imposter")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Register_Weak_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newTestAuthService()

	_, err := service.Register("alice@example.com", "weak", "Alice")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	service, _ := newTestAuthService()

	_, err := service.Register("alice@example.com", "ComplexPass123!", "Alice")
	req.NoError(err)

	_, err = service.Login("alice@example.com", "WrongPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestAuthService_Login_Unknown_Email(t *testing.T) {
	req := require.New(t)
	service, _ := newTestAuthService()

	// Same error as a bad password, nothing leaks about account existence.
	_, err := service.Login("ghost@example.com", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestAuthService_Authenticate_Garbage_Token(t *testing.T) {
	req := require.New(t)
	service, _ := newTestAuthService()

	_, err := service.Authenticate("not-a-jwt")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
