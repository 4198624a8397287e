package models

// Business is the database row for a company account.
type Business struct {
	BusinessID         string `json:"businessID" db:"business_id"`
	Name               string `json:"name" db:"name"`
	AllowedEmailDomain string `json:"allowedEmailDomain" db:"allowed_email_domain"`
	OwnerUserID        string `json:"ownerUserID" db:"owner_user_id"`
	IsActive           bool   `json:"isActive" db:"is_active"`
	AuditFields
}
