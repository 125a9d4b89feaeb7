package session

import "time"

// UserSession tracks one login. TokenID is the jti of the access token.
type UserSession struct {
	ID         int64
	TokenID    string
	UserID     int64
	Email      string
	IP         string
	UserAgent  string
	LoginAt    time.Time
	LastSeenAt time.Time
	EndedAt    *time.Time
}

// Active reports whether the session has not been ended.
func (s *UserSession) Active() bool {
	return s.EndedAt == nil
}

// Filter narrows session listings.
type Filter struct {
	UserID     int64
	ActiveOnly bool
	Page       int64
	Limit      int64
}
