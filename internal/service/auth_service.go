package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/repository"
	"github.com/amabee/property-rental/internal/store"

	"go.uber.org/zap"
)

const loginFailuresKeyPrefix = "rentald:login_failures:"

// AuthConfig login throttling settings. MaxFailedAttempts <= 0 disables throttling.
type AuthConfig struct {
	MaxFailedAttempts int
	Window            time.Duration
}

// AuthService username/password login.
// Failed attempts are counted per username in kv; kv may be nil.
type AuthService struct {
	users  repository.UsersRepository
	hasher PasswordHasher
	kv     store.KV
	cfg    AuthConfig
	logger *zap.Logger
}

func NewAuthService(users repository.UsersRepository, hasher PasswordHasher, kv store.KV, cfg AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, kv: kv, cfg: cfg, logger: logger}
}

// LoginRequest login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return required("username")
	}
	if r.Password == "" {
		return required("password")
	}
	return nil
}

// LoginResponse user record returned on success. Never carries the hash.
type LoginResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Type     int    `json:"type"`
}

// Login returns ErrInvalidCredentials for an unknown user or wrong password,
// and ErrTooManyAttempts while the username is locked out.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.lockedOut(ctx, req.Username) {
		s.logger.Warn("User login refused: too many failed attempts", zap.String("username", req.Username))
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordFailure(ctx, req.Username, "unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.verify(ctx, user, req.Password) {
		s.recordFailure(ctx, req.Username, "wrong_password")
		return nil, ErrInvalidCredentials
	}

	s.clearFailures(ctx, req.Username)
	s.logger.Info("User login succeeded", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return &LoginResponse{ID: user.ID, Name: user.Name, Username: user.Username, Type: user.Type}, nil
}

// verify checks the password and upgrades a matching legacy hash to bcrypt.
func (s *AuthService) verify(ctx context.Context, user *domain.User, password string) bool {
	if !isLegacyHash(user.PasswordHash) {
		return s.hasher.Compare([]byte(user.PasswordHash), []byte(password)) == nil
	}
	if !compareLegacyHash(user.PasswordHash, password) {
		return false
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		s.logger.Warn("Failed to rehash legacy password", zap.Int64("user_id", user.ID), zap.Error(err))
		return true
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		s.logger.Warn("Failed to store upgraded password hash", zap.Int64("user_id", user.ID), zap.Error(err))
		return true
	}
	s.logger.Info("Upgraded legacy password hash", zap.Int64("user_id", user.ID))
	return true
}

func failuresKey(username string) string {
	return loginFailuresKeyPrefix + strings.ToLower(username)
}

func (s *AuthService) throttled() bool {
	return s.kv != nil && s.cfg.MaxFailedAttempts > 0
}

func (s *AuthService) lockedOut(ctx context.Context, username string) bool {
	if !s.throttled() {
		return false
	}
	v, err := s.kv.Get(ctx, failuresKey(username))
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Failed to read login failures", zap.String("username", username), zap.Error(err))
		}
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	return n >= s.cfg.MaxFailedAttempts
}

func (s *AuthService) recordFailure(ctx context.Context, username, reason string) {
	s.logger.Warn("User login failed", zap.String("username", username), zap.String("reason", reason))
	if !s.throttled() {
		return
	}
	if _, err := s.kv.Incr(ctx, failuresKey(username), s.cfg.Window); err != nil {
		s.logger.Warn("Failed to record login failure", zap.String("username", username), zap.Error(err))
	}
}

func (s *AuthService) clearFailures(ctx context.Context, username string) {
	if !s.throttled() {
		return
	}
	if err := s.kv.Del(ctx, failuresKey(username)); err != nil {
		s.logger.Warn("Failed to clear login failures", zap.String("username", username), zap.Error(err))
	}
}

// SeedAdmin creates or resets the bootstrap administrator account.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password, name string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return required("username")
	}
	if password == "" {
		return required("password")
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	id, err := s.users.UpsertUser(ctx, &domain.User{
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
		Type:         AdminUserType,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.Info("Admin account seeded", zap.Int64("user_id", id), zap.String("username", username))
	return nil
}

// AdminUserType users.type of the seeded administrator
const AdminUserType = 1
