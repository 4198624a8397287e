package models

import (
	"database/sql"
	"time"
)

// PasswordResetToken is the database row for a reset credential.
type PasswordResetToken struct {
	TokenID   string       `json:"tokenID" db:"token_id"`
	UserID    string       `json:"userID" db:"user_id"`
	TokenHash string       `json:"-" db:"token_hash"`
	ExpiresAt time.Time    `json:"expiresAt" db:"expires_at"`
	UsedAt    sql.NullTime `json:"usedAt" db:"used_at"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}
