package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	password := "sturdy-pass1"

	hash, err := HashPassword(password)
	assert.NoError(t, err, "Hashing should not return an error")
	assert.NotEmpty(t, hash, "Hash should not be empty")
	assert.NotEqual(t, password, hash, "Hash should differ from the plaintext")

	assert.True(t, CheckPasswordHash(password, hash), "Correct password should verify")
	assert.False(t, CheckPasswordHash("wrong-pass1", hash), "Wrong password should not verify")
	assert.False(t, CheckPasswordHash(password, "not-a-bcrypt-hash"), "Garbage hash should not verify")
}

func TestHashPasswordSalted(t *testing.T) {
	// Two hashes of the same password must differ (bcrypt salts per call).
	first, err := HashPassword("sturdy-pass1")
	assert.NoError(t, err)
	second, err := HashPassword("sturdy-pass1")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second, "Hashes of the same password should not repeat")
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"meets policy", "sturdy-pass1", false},
		{"minimum length with letter and digit", "abcdefg1", false},
		{"too short", "abc1", true},
		{"seven characters", "abcdef1", true},
		{"letters only", "abcdefgh", true},
		{"digits only", "12345678", true},
		{"symbols only", "!!!!!!!!", true},
		{"unicode letters with digit", "pässwörd1", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err, "Password %q should be rejected", tt.password)
			} else {
				assert.NoError(t, err, "Password %q should be accepted", tt.password)
			}
			assert.Equal(t, !tt.wantErr, IsStrongPassword(tt.password), "IsStrongPassword should agree with ValidatePasswordStrength")
		})
	}
}
