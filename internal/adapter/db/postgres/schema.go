package postgres

import (
	"time"

	"gorm.io/gorm"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"not null;uniqueIndex"` // stored lower-cased
	PasswordHash  string `gorm:"not null"`
	Phone         string
	Role          string `gorm:"not null;default:user;index"`
	WalletBalance int64  `gorm:"not null;default:0;check:wallet_balance >= 0"` // paise
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// PlanSchema represents the database schema for the plans table.
type PlanSchema struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	Operator  string `gorm:"not null;index"`
	Price     int64  `gorm:"not null;index"`
	Data      string
	Validity  int    `gorm:"not null"`
	Category  string `gorm:"not null;default:general;index"`
	Benefits  string
	Popular   bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the PlanSchema model.
func (PlanSchema) TableName() string {
	return "plans"
}

// TransactionSchema represents the database schema for the transactions table.
type TransactionSchema struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Reference      string `gorm:"not null;uniqueIndex"`
	UserID         int64  `gorm:"not null;index:idx_transactions_user_created,priority:1"`
	Type           string `gorm:"not null;index"`
	Amount         int64  `gorm:"not null"`
	OriginalAmount int64  `gorm:"not null"`
	Coupon         string
	Status         string `gorm:"not null;index"`
	Description    string
	PlanID         *int64
	PhoneNumber    string
	Operator       string `gorm:"index"`
	Method         string
	CreatedAt      time.Time `gorm:"index:idx_transactions_user_created,priority:2"`
	UpdatedAt      time.Time
}

// TableName specifies the table name for the TransactionSchema model.
func (TransactionSchema) TableName() string {
	return "transactions"
}

// PaymentSchema represents the database schema for the payments table.
type PaymentSchema struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Reference     string `gorm:"not null;uniqueIndex"`
	UserID        int64  `gorm:"not null;index"`
	TransactionID int64  `gorm:"not null;index"`
	Amount        int64  `gorm:"not null"`
	Method        string `gorm:"not null"`
	Status        string `gorm:"not null"`
	CardLast4     string
	UPIID         string `gorm:"column:upi_id"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the PaymentSchema model.
func (PaymentSchema) TableName() string {
	return "payments"
}

// NotificationSchema represents the database schema for the notifications table.
type NotificationSchema struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Message   string `gorm:"not null"`
	Type      string `gorm:"not null;default:info"`
	Read      bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName specifies the table name for the NotificationSchema model.
func (NotificationSchema) TableName() string {
	return "notifications"
}

// SessionSchema represents the database schema for the user_sessions table.
type SessionSchema struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TokenID    string `gorm:"not null;uniqueIndex"`
	UserID     int64  `gorm:"not null;index"`
	Email      string `gorm:"not null"`
	IP         string
	UserAgent  string
	LoginAt    time.Time `gorm:"not null"`
	LastSeenAt time.Time `gorm:"not null"`
	EndedAt    *time.Time
}

// TableName specifies the table name for the SessionSchema model.
func (SessionSchema) TableName() string {
	return "user_sessions"
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserSchema{},
		&PlanSchema{},
		&TransactionSchema{},
		&PaymentSchema{},
		&NotificationSchema{},
		&SessionSchema{},
	)
}
