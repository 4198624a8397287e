package utils

import (
	"strings"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
)

// publicMailboxDomains are consumer email providers that can never serve as a
// business's staff domain.
var publicMailboxDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"protonmail.com": {},
	"mail.com":       {},
	"zoho.com":       {},
	"yandex.com":     {},
	"gmx.com":        {},
	"live.com":       {},
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain extracts the domain part of an email address, lower-cased.
// Returns an empty string when the address has no domain part.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// IsPublicMailboxDomain reports whether the domain belongs to a consumer
// email provider.
func IsPublicMailboxDomain(domain string) bool {
	_, blocked := publicMailboxDomains[strings.ToLower(domain)]
	return blocked
}

// ValidateStaffEmailDomain checks that a staff email's domain matches the
// business's allowed domain exactly or is a subdomain of it, and is not a
// public mailbox provider.
func ValidateStaffEmailDomain(email, allowedDomain string) error {
	emailDomain := EmailDomain(email)
	if emailDomain == "" {
		return apperrors.NewValidationFailedError("email address has no domain part")
	}
	if IsPublicMailboxDomain(emailDomain) {
		return apperrors.NewValidationFailedError("staff accounts require a company email address, not a personal mailbox")
	}
	allowed := strings.ToLower(strings.TrimSpace(allowedDomain))
	if allowed == "" {
		return apperrors.NewValidationFailedError("business has no allowed email domain configured")
	}
	if emailDomain == allowed || strings.HasSuffix(emailDomain, "."+allowed) {
		return nil
	}
	return apperrors.NewValidationFailedError("email domain does not match the business domain " + allowed)
}
