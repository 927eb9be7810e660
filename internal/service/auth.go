package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/communitysquad/eventhub/internal/auth"
	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/repository"
)

const bcryptCost = 10

// AuthResult is a signed-in user together with their tokens.
type AuthResult struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// AuthService owns sign-up, login and token refresh. New accounts are
// bootstrapped with one Active assignment to the default viewer role; the
// user row and the assignment are written in a single transaction.
type AuthService struct {
	users      UserStore
	roles      RoleStore
	tokens     *auth.TokenManager
	authSecret string
	logger     zerolog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, roles RoleStore, tokens *auth.TokenManager, authSecret string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		authSecret: authSecret,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Register signs a user up with a password. If the derived user name is
// already taken by an active account, the request falls back to a password
// login for that account instead of failing.
func (s *AuthService) Register(ctx context.Context, req model.RegisterUserRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	userName := strings.SplitN(email, "@", 2)[0]

	n, err := s.users.CountActiveByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}

	var user *model.User
	if n > 0 {
		s.logger.Debug().Str("email", email).Msg("user name taken, attempting password login")
		user, err = s.loginWithPassword(ctx, email, req.Password)
	} else {
		user, err = s.createUserWithPassword(ctx, email, req.Name, req.Password, userName)
	}
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// Login is the shared-secret token exchange: a caller presenting the
// configured auth secret is signed in by email, and the account is
// provisioned on first sight.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*AuthResult, error) {
	if s.authSecret == "" || req.AuthToken != s.authSecret {
		return nil, ErrInvalidAuthToken
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.Status.IsActive() {
			return nil, ErrInvalidCredentials
		}
		if user.Roles, err = s.activeAssignments(ctx, user.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.createUser(ctx, email, req.Name, "", strings.SplitN(email, "@", 2)[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return "", err
	}
	return s.tokens.Generate(userID)
}

func (s *AuthService) loginWithPassword(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Status.IsActive() {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Roles, err = s.activeAssignments(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) createUserWithPassword(ctx context.Context, email, name, password, userName string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.createUser(ctx, email, name, string(hash), userName)
}

// createUser inserts the user and its default-role assignment in one unit
// of work. A missing default role is an operator error.
func (s *AuthService) createUser(ctx context.Context, email, name, passwordHash, userName string) (*model.User, error) {
	role, err := s.roles.GetByTitle(ctx, model.RoleViewer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMissingDefaultRole
		}
		return nil, err
	}

	user := &model.User{
		Email:        email,
		UserName:     userName,
		Name:         name,
		PasswordHash: passwordHash,
	}
	assignment, err := s.users.CreateWithRole(ctx, user, role.ID)
	if err != nil {
		return nil, err
	}
	assignment.RoleTitle = role.Title

	s.logger.Info().Str("user_id", user.ID).Str("email", email).Msg("user created")

	user.Roles = []model.UserRole{*assignment}
	return user, nil
}

func (s *AuthService) activeAssignments(ctx context.Context, userID string) ([]model.UserRole, error) {
	assignments, err := s.roles.AssignmentsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := assignments[:0:0]
	for _, a := range assignments {
		if a.Status.IsActive() {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *AuthService) issueTokens(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &AuthResult{User: user, Token: token, RefreshToken: refresh}, nil
}
