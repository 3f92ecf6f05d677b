// Package services contains server-side business logic. This file implements
// UserService: registration, credential verification, token minting, and the
// administrative user operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/server/auth"
	"github.com/dmitrijs2005/taskvault/internal/server/config"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/dmitrijs2005/taskvault/internal/server/repositories/repomanager"
)

// UserService provides identity operations:
//   - Register: create users with a bcrypt-hashed password
//   - Login: verify credentials and mint an access token
//   - GetByEmail: resolve a token subject to a stored user
//   - List / Delete: administrative operations
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user. The plaintext password is hashed immediately
// and never stored or logged. A duplicate email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and, on success, returns a signed access
// token whose subject is the user's email. Unknown emails and wrong passwords
// yield the same common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// GetByEmail resolves a verified token subject to its stored user. A subject
// whose user has been deleted since the token was issued yields
// common.ErrorUnauthorized.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)
	result, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return result, nil
}

// Delete removes a user by id and returns its last state. The user's tasks
// and subtasks are removed with it by the schema's cascading foreign keys.
func (s *UserService) Delete(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error deleting user: %w", err)
	}
	return user, nil
}
