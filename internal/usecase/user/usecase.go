package user

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/cache"
	"recharge-service/internal/domain/event"
	"recharge-service/internal/domain/session"
	domain "recharge-service/internal/domain/user"
	"recharge-service/internal/usecase/validation"
	"recharge-service/pkg/auth"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/logger"
	"recharge-service/pkg/security"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)               // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)             // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)      // Retrieve user by email, nil if absent
	Update(ctx context.Context, u *domain.User) error                        // Update profile fields
	Delete(ctx context.Context, id int64) error                              // Delete user by ID
	List(ctx context.Context, f domain.Filter) ([]domain.User, int64, error) // List users with paging and search
}

// SessionRepository defines the data access operations for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *session.UserSession) error
	GetByTokenID(ctx context.Context, tokenID string) (*session.UserSession, error)
	Touch(ctx context.Context, tokenID string, at time.Time) error
	End(ctx context.Context, tokenID string, at time.Time) error
	EndAll(ctx context.Context, userID int64, at time.Time) ([]string, error)
	List(ctx context.Context, f session.Filter) ([]session.UserSession, int64, error)
}

// Options holds account defaults.
type Options struct {
	InitialBalance int64 // paise credited to every new account
	BcryptCost     int
}

// Service implements the business logic for accounts, authentication and sessions.
type Service struct {
	repo     Repository
	sessions SessionRepository
	tokens   *auth.TokenManager
	denylist cache.TokenDenylist // optional
	events   event.Publisher
	opts     Options
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service. If denylist is nil, revocation is
// checked against the session table.
func New(r Repository, s SessionRepository, tm *auth.TokenManager, d cache.TokenDenylist, p event.Publisher, opts Options, log *zap.Logger) *Service {
	return &Service{
		repo:     r,
		sessions: s,
		tokens:   tm,
		denylist: d,
		events:   p,
		opts:     opts,
		log:      log,
		validate: validation.New(),
		now:      time.Now,
	}
}

// Register creates an account with the initial wallet balance and logs it in.
func (uc *Service) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	log := logger.WithContext(ctx, uc.log)
	log.Info("registering user", zap.String("email", in.Email))

	if err := validation.Struct(uc.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	existing, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.NewAlreadyExistsError("user", "email already exists")
	}

	hash, err := auth.HashPassword(in.Password, uc.opts.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	u := &domain.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  hash,
		Phone:         in.Phone,
		Role:          domain.RoleUser,
		WalletBalance: uc.opts.InitialBalance,
	}
	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	u.ID = id
	u.CreatedAt = uc.now()

	uc.publish(ctx, event.Event{
		Name:    event.UserRegistered,
		Key:     strconv.FormatInt(id, 10),
		UserID:  id,
		Payload: map[string]any{"email": u.Email},
	})

	return uc.startSession(ctx, u, in.IP, in.UserAgent)
}

// Login verifies credentials and opens a new session.
func (uc *Service) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	log := logger.WithContext(ctx, uc.log)

	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}

	u, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to look up user", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to look up user", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, in.Password) {
		log.Warn("login rejected", zap.String("email", in.Email))
		return nil, apperrors.NewUnauthenticatedError("invalid email or password")
	}

	return uc.startSession(ctx, u, in.IP, in.UserAgent)
}

func (uc *Service) startSession(ctx context.Context, u *domain.User, ip, userAgent string) (*AuthResponse, error) {
	token, claims, err := uc.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	now := uc.now()
	if err := uc.sessions.Create(ctx, &session.UserSession{
		TokenID:    claims.SessionID(),
		UserID:     u.ID,
		Email:      u.Email,
		IP:         ip,
		UserAgent:  userAgent,
		LoginAt:    now,
		LastSeenAt: now,
	}); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, uc.log).Info("user logged in", zap.Int64("user_id", u.ID), zap.String("session_id", claims.SessionID()))
	return &AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      toDTO(u),
	}, nil
}

// Logout ends the session of claims and revokes its token.
func (uc *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrUnauthorized
	}
	now := uc.now()

	if err := uc.sessions.End(ctx, claims.SessionID(), now); err != nil {
		return err
	}
	if uc.denylist != nil {
		if err := uc.denylist.Revoke(ctx, claims.SessionID(), claims.ExpiresIn(now)); err != nil {
			uc.log.Error("failed to denylist token", zap.String("session_id", claims.SessionID()), zap.Error(err))
			return apperrors.NewInternalError("failed to revoke token", err)
		}
	}

	logger.WithContext(ctx, uc.log).Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// IsRevoked reports whether the session behind tokenID was ended.
func (uc *Service) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if uc.denylist != nil {
		revoked, err := uc.denylist.IsRevoked(ctx, tokenID)
		if err == nil {
			return revoked, nil
		}
		uc.log.Warn("denylist unavailable, checking session table", zap.Error(err))
	}

	s, err := uc.sessions.GetByTokenID(ctx, tokenID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return !s.Active(), nil
}

// GetUser retrieves a user. Non-admins may only read their own account.
func (uc *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if in.ID <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}
	if !in.Actor.CanAccess(in.ID) {
		return nil, apperrors.ErrPermissionDenied
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(u)
	return &dto, nil
}

// ListUsers retrieves a paginated list of users with optional search functionality.
func (uc *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	in.Page, in.Limit = domain.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	if err := validation.Struct(uc.validate, in); err != nil {
		return nil, err
	}
	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		uc.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("query", fmt.Sprintf("invalid search query: %v", err))
	}

	users, total, err := uc.repo.List(ctx, domain.Filter{
		Query: query,
		Email: in.Email,
		Role:  in.Role,
		Page:  in.Page,
		Limit: in.Limit,
	})
	if err != nil {
		uc.log.Error("failed to list users", zap.String("query", in.Query), zap.Error(err))
		return nil, err
	}

	out := make([]User, len(users))
	for i := range users {
		out[i] = toDTO(&users[i])
	}
	return &ListUsersResponse{
		Users:      out,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}

// UpdateUser changes profile fields. Only admins may change roles or
// edit other accounts.
func (uc *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID))

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(uc.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}
	if !in.Actor.CanAccess(in.ID) {
		return nil, apperrors.ErrPermissionDenied
	}
	if in.Role != "" && !in.Actor.IsAdmin() {
		return nil, apperrors.NewPermissionDeniedError("only admins can change roles")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != u.Email {
		existing, err := uc.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != in.ID {
			log.Warn("email already exists", zap.String("email", in.Email), zap.Int64("existing_id", existing.ID))
			return nil, apperrors.NewAlreadyExistsError("user", "email already exists")
		}
		u.Email = in.Email
	}
	if in.Name != "" {
		u.Name = strings.TrimSpace(in.Name)
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	roleChanged := in.Role != "" && in.Role != u.Role
	if in.Role != "" {
		u.Role = in.Role
	}

	if err := uc.repo.Update(ctx, u); err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	// tokens carry the role, so the user signs in again to pick it up
	if roleChanged {
		log.Info("role changed, ending sessions", zap.Int64("id", in.ID), zap.String("role", u.Role))
		if err := uc.endSessions(ctx, in.ID); err != nil {
			return nil, err
		}
	}

	dto := toDTO(u)
	return &dto, nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (uc *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		return apperrors.NewValidationError("id", "invalid user id")
	}
	if !in.Actor.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if in.Actor.UserID == in.ID {
		return apperrors.NewFailedPreconditionError("", "cannot delete your own account")
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}
	return uc.endSessions(ctx, in.ID)
}

// endSessions closes all of a user's open sessions and revokes their tokens.
func (uc *Service) endSessions(ctx context.Context, userID int64) error {
	tokenIDs, err := uc.sessions.EndAll(ctx, userID, uc.now())
	if err != nil {
		uc.log.Error("failed to end sessions", zap.Int64("user_id", userID), zap.Error(err))
		return apperrors.NewInternalError("failed to end sessions", err)
	}
	if uc.denylist == nil {
		return nil
	}
	for _, id := range tokenIDs {
		if err := uc.denylist.Revoke(ctx, id, uc.tokens.TTL()); err != nil {
			uc.log.Error("failed to denylist token", zap.String("session_id", id), zap.Error(err))
			return apperrors.NewInternalError("failed to revoke token", err)
		}
	}
	return nil
}

// EnsureAdmin creates the admin account, or promotes an existing account
// with that email to admin.
func (uc *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		existing.Role = domain.RoleAdmin
		uc.log.Info("promoting existing account to admin", zap.String("email", email))
		return uc.repo.Update(ctx, existing)
	}

	hash, err := auth.HashPassword(password, uc.opts.BcryptCost)
	if err != nil {
		return err
	}
	if _, err := uc.repo.Create(ctx, &domain.User{
		Name:          "Administrator",
		Email:         email,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		WalletBalance: uc.opts.InitialBalance,
	}); err != nil {
		return err
	}

	uc.log.Info("admin account created", zap.String("email", email))
	return nil
}

// TouchSession records activity on the caller's session.
func (uc *Service) TouchSession(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return apperrors.ErrUnauthorized
	}
	return uc.sessions.Touch(ctx, tokenID, uc.now())
}

// ListSessions retrieves login sessions, most recent first.
func (uc *Service) ListSessions(ctx context.Context, in ListSessionsRequest) (*ListSessionsResponse, error) {
	in.Page, in.Limit = domain.NormalizePage(in.Page, in.Limit, defaultPageSize, maxPageSize)

	sessions, total, err := uc.sessions.List(ctx, session.Filter{
		UserID:     in.UserID,
		ActiveOnly: in.ActiveOnly,
		Page:       in.Page,
		Limit:      in.Limit,
	})
	if err != nil {
		uc.log.Error("failed to list sessions", zap.Error(err))
		return nil, err
	}

	return &ListSessionsResponse{
		Sessions:   sessions,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}

func (uc *Service) publish(ctx context.Context, e event.Event) {
	if uc.events == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = uc.now()
	}
	if err := uc.events.Publish(ctx, e); err != nil {
		uc.log.Warn("failed to publish event", zap.String("event", e.Name), zap.Error(err))
	}
}
