package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ericlong128/reimbursement-service/internal/auth"
	"github.com/ericlong128/reimbursement-service/internal/domain"
	"github.com/ericlong128/reimbursement-service/internal/events"
	"github.com/ericlong128/reimbursement-service/internal/repository"
	apperrors "github.com/ericlong128/reimbursement-service/pkg/util"
)

// UserService coordinates registration, login and account management.
type UserService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	TokenMgr   *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenMgr,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates a new account. Username uniqueness is enforced by a
// best-effort lookup before the insert.
func (s *UserService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if len(username) < 1 || len(password) < 1 {
		return nil, apperrors.NewValidationError("Username or password is too short", nil)
	}
	if role == "" {
		role = domain.RoleEmployee
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to check username", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("Username already exists.", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, apperrors.NewRetrievalFailure("Failed to create user")
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and issues a session token. An unknown username
// is reported distinctly from a credential mismatch.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if user == nil {
		s.logger.Error("user not found", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewNotFound("User not found", nil)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Error("invalid credentials", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("login successful", zap.String("user_id", user.UserID))
	return user, token, exp, nil
}

// GetByUsername looks an account up for boundary pre-checks.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if len(username) < 1 {
		return nil, apperrors.NewValidationError("Username is too short", nil)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFound("No user was found", nil)
	}
	return user, nil
}

// UpdatePassword replaces the caller's credential with a hash of newPassword.
func (s *UserService) UpdatePassword(ctx context.Context, userID, newPassword string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		s.logger.Error("user not found", zap.String("user_id", userID))
		return nil, apperrors.NewNotFound("User not found", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	updated, err := s.users.UpdatePassword(ctx, userID, hash)
	if err != nil {
		s.logger.Error("failed to update password", zap.Error(err))
		return nil, apperrors.NewRetrievalFailure("Failed to update password.")
	}
	if updated == nil {
		return nil, apperrors.NewNotFound("User not found", nil)
	}
	s.logger.Info("password updated", zap.String("user_id", userID))
	return updated, nil
}

// ToggleRole flips the target account between EMPLOYEE and MANAGER. Only a
// manager may do this.
func (s *UserService) ToggleRole(ctx context.Context, actorRole domain.Role, username string) (*domain.User, error) {
	if actorRole != domain.RoleManager {
		s.logger.Error("role update not authorized")
		return nil, apperrors.NewForbidden("User not authorized")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		s.logger.Error("user not found", zap.String("username", username))
		return nil, apperrors.NewNotFound("User not found", nil)
	}

	newRole := user.Role.Toggle()
	updated, err := s.users.UpdateRole(ctx, user.UserID, newRole)
	if err != nil {
		s.logger.Error("failed to update role", zap.Error(err))
		return nil, apperrors.NewRetrievalFailure("Failed to update role.")
	}
	if updated == nil {
		return nil, apperrors.NewNotFound("User not found", nil)
	}

	s.logger.Info("role updated", zap.String("user_id", updated.UserID), zap.String("role", string(updated.Role)))
	s.publishEvent(ctx, events.Event{
		Type: events.EventUserRoleChanged,
		Payload: events.UserRoleChangedPayload{
			UserID:  updated.UserID,
			OldRole: user.Role,
			NewRole: updated.Role,
		},
	})
	return updated, nil
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
