package domain

import "time"

// PasswordResetToken is a single-use credential for the forgot-password flow.
// Only the SHA-256 hash of the opaque token is stored; issuing a new token
// invalidates any earlier ones for the same account.
type PasswordResetToken struct {
	TokenID   string     `json:"tokenID"` // Primary Key (UUID)
	UserID    string     `json:"userID"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsExpired checks if the token is past its expiry.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsed checks if the token has already been consumed.
func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}
