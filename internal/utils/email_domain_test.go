package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@acme.com", NormalizeEmail("  Jane@Acme.COM  "), "Should trim and lower-case")
	assert.Equal(t, "jane@acme.com", NormalizeEmail("jane@acme.com"), "Already normalized input should pass through")
	assert.Equal(t, "", NormalizeEmail("   "), "Whitespace-only input should normalize to empty")
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme.com", EmailDomain("jane@acme.com"))
	assert.Equal(t, "acme.com", EmailDomain("jane@ACME.com"), "Domain should be lower-cased")
	assert.Equal(t, "acme.com", EmailDomain(`"odd@local"@acme.com`), "Should split on the last @")
	assert.Equal(t, "", EmailDomain("no-at-sign"), "Address without @ has no domain")
	assert.Equal(t, "", EmailDomain("trailing@"), "Address ending in @ has no domain")
}

func TestIsPublicMailboxDomain(t *testing.T) {
	assert.True(t, IsPublicMailboxDomain("gmail.com"))
	assert.True(t, IsPublicMailboxDomain("GMAIL.com"), "Check should be case-insensitive")
	assert.True(t, IsPublicMailboxDomain("outlook.com"))
	assert.False(t, IsPublicMailboxDomain("acme.com"))
	assert.False(t, IsPublicMailboxDomain("mail.acme.com"), "Subdomains of company domains are not public providers")
}

func TestValidateStaffEmailDomain(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		allowed string
		wantErr bool
	}{
		{"exact match", "jane@acme.com", "acme.com", false},
		{"subdomain match", "jane@de.acme.com", "acme.com", false},
		{"nested subdomain match", "jane@eu.de.acme.com", "acme.com", false},
		{"allowed domain differs in case", "jane@acme.com", "ACME.com", false},
		{"different domain", "jane@other.com", "acme.com", true},
		{"suffix but not subdomain", "jane@notacme.com", "acme.com", true},
		{"public mailbox", "jane@gmail.com", "acme.com", true},
		{"public mailbox as allowed domain", "jane@gmail.com", "gmail.com", true},
		{"missing domain part", "jane", "acme.com", true},
		{"empty allowed domain", "jane@acme.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStaffEmailDomain(tt.email, tt.allowed)
			if tt.wantErr {
				assert.Error(t, err, "Email %q against domain %q should be rejected", tt.email, tt.allowed)
			} else {
				assert.NoError(t, err, "Email %q against domain %q should be accepted", tt.email, tt.allowed)
			}
		})
	}
}
