package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/internal/domain/user"
	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/security"
)

// UserRepoPG implements the user Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

func toUser(m *UserSchema) *user.User {
	return &user.User{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		Phone:         m.Phone,
		Role:          m.Role,
		WalletBalance: m.WalletBalance,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:          u.Name,
		Email:         strings.ToLower(u.Email),
		PasswordHash:  u.PasswordHash,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
	}
	if model.Role == "" {
		model.Role = user.RoleUser
	}

	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", model.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update saves the profile fields of an existing user. The wallet balance
// is only changed through Debit and Credit.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := conn(ctx, r.db).Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":  u.Name,
		"email": strings.ToLower(u.Email),
		"phone": u.Phone,
		"role":  u.Role,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", u.ID))
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid user id")
	}

	res := conn(ctx, r.db).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(&model), nil
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no
// user has that email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	err := conn(ctx, r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toUser(&model), nil
}

// List retrieves users matching the filter and the total number of matches.
// f.Query must already be validated with security.ValidateSearchQuery.
func (r *UserRepoPG) List(ctx context.Context, f user.Filter) ([]user.User, int64, error) {
	q := conn(ctx, r.db).Model(&UserSchema{})
	if f.Query != "" {
		pattern := likePattern(strings.ToLower(security.SanitizeSearchString(f.Query)))
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if f.Email != "" {
		q = q.Where("email = ?", strings.ToLower(f.Email))
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserSchema
	if err := q.Order("id ASC").Offset(offset(f.Page, f.Limit)).Limit(int(f.Limit)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", f.Query), zap.Int64("page", f.Page), zap.Int64("limit", f.Limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toUser(&models[i])
	}
	return users, total, nil
}

// Count returns the number of registered users.
func (r *UserRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&UserSchema{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Debit subtracts amount paise from the wallet and returns the new balance.
// The update only matches when the balance covers the amount, so concurrent
// debits can never overdraw the wallet.
func (r *UserRepoPG) Debit(ctx context.Context, id, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.NewValidationError("amount", "must be positive")
	}

	db := conn(ctx, r.db)
	res := db.Model(&UserSchema{}).
		Where("id = ? AND wallet_balance >= ?", id, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		r.log.Error("failed to debit wallet", zap.Error(res.Error), zap.Int64("id", id), zap.Int64("amount", amount))
		return 0, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return 0, err
		}
		r.log.Info("wallet debit rejected", zap.Int64("id", id), zap.Int64("amount", amount))
		return 0, apperrors.ErrInsufficientBalance
	}

	return r.balance(ctx, id)
}

// Credit adds amount paise to the wallet and returns the new balance.
func (r *UserRepoPG) Credit(ctx context.Context, id, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.NewValidationError("amount", "must be positive")
	}

	res := conn(ctx, r.db).Model(&UserSchema{}).
		Where("id = ?", id).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		r.log.Error("failed to credit wallet", zap.Error(res.Error), zap.Int64("id", id), zap.Int64("amount", amount))
		return 0, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	return r.balance(ctx, id)
}

func (r *UserRepoPG) balance(ctx context.Context, id int64) (int64, error) {
	var balances []int64
	if err := conn(ctx, r.db).Model(&UserSchema{}).Where("id = ?", id).Pluck("wallet_balance", &balances).Error; err != nil {
		return 0, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	if len(balances) == 0 {
		return 0, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}
	return balances[0], nil
}
