package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/session"
	apperrors "recharge-service/pkg/errors"
)

// SessionRepoPG implements the session Repository interface using PostgreSQL and GORM.
type SessionRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSessionRepoPG creates a new instance of SessionRepoPG.
func NewSessionRepoPG(db *gorm.DB, log *zap.Logger) *SessionRepoPG {
	return &SessionRepoPG{db: db, log: log}
}

func toSession(m *SessionSchema) *session.UserSession {
	return &session.UserSession{
		ID:         m.ID,
		TokenID:    m.TokenID,
		UserID:     m.UserID,
		Email:      m.Email,
		IP:         m.IP,
		UserAgent:  m.UserAgent,
		LoginAt:    m.LoginAt,
		LastSeenAt: m.LastSeenAt,
		EndedAt:    m.EndedAt,
	}
}

// Create records a new login session.
func (r *SessionRepoPG) Create(ctx context.Context, s *session.UserSession) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}

	model := SessionSchema{
		TokenID:    s.TokenID,
		UserID:     s.UserID,
		Email:      s.Email,
		IP:         s.IP,
		UserAgent:  s.UserAgent,
		LoginAt:    s.LoginAt,
		LastSeenAt: s.LastSeenAt,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create session in db", zap.Error(err), zap.Int64("user_id", s.UserID))
		return fmt.Errorf("failed to create session: %w", err)
	}

	s.ID = model.ID
	return nil
}

// GetByTokenID retrieves the session created for a token.
func (r *SessionRepoPG) GetByTokenID(ctx context.Context, tokenID string) (*session.UserSession, error) {
	var model SessionSchema
	if err := conn(ctx, r.db).Where("token_id = ?", tokenID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("session", "session not found")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return toSession(&model), nil
}

// Touch records activity on an open session.
func (r *SessionRepoPG) Touch(ctx context.Context, tokenID string, at time.Time) error {
	res := conn(ctx, r.db).Model(&SessionSchema{}).
		Where("token_id = ? AND ended_at IS NULL", tokenID).
		Update("last_seen_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to touch session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("session", "session not found")
	}
	return nil
}

// End closes a session. Ending an already closed session is a no-op.
func (r *SessionRepoPG) End(ctx context.Context, tokenID string, at time.Time) error {
	res := conn(ctx, r.db).Model(&SessionSchema{}).
		Where("token_id = ? AND ended_at IS NULL", tokenID).
		Updates(map[string]any{"ended_at": at, "last_seen_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to end session: %w", res.Error)
	}
	return nil
}

// EndAll closes every open session of a user and returns their token IDs.
func (r *SessionRepoPG) EndAll(ctx context.Context, userID int64, at time.Time) ([]string, error) {
	var tokenIDs []string
	q := conn(ctx, r.db).Model(&SessionSchema{}).Where("user_id = ? AND ended_at IS NULL", userID)
	if err := q.Pluck("token_id", &tokenIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load open sessions: %w", err)
	}
	if len(tokenIDs) == 0 {
		return nil, nil
	}

	res := conn(ctx, r.db).Model(&SessionSchema{}).
		Where("token_id IN ? AND ended_at IS NULL", tokenIDs).
		Updates(map[string]any{"ended_at": at, "last_seen_at": at})
	if res.Error != nil {
		r.log.Error("failed to end user sessions in db", zap.Error(res.Error), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to end sessions: %w", res.Error)
	}
	return tokenIDs, nil
}

// List retrieves sessions, most recent login first, with the total number of matches.
func (r *SessionRepoPG) List(ctx context.Context, f session.Filter) ([]session.UserSession, int64, error) {
	q := conn(ctx, r.db).Model(&SessionSchema{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ActiveOnly {
		q = q.Where("ended_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	q = q.Order("login_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Offset(offset(f.Page, f.Limit)).Limit(int(f.Limit))
	}

	var models []SessionSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list sessions from db", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]session.UserSession, len(models))
	for i := range models {
		out[i] = *toSession(&models[i])
	}
	return out, total, nil
}
