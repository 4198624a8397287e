package dto

import (
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// --- Business DTOs ---

// CreateBusinessRequest defines data for onboarding a new business customer.
type CreateBusinessRequest struct {
	Name               string `json:"name" binding:"required,max=200"`
	AllowedEmailDomain string `json:"allowedEmailDomain" binding:"required,fqdn"`
	OwnerName          string `json:"ownerName" binding:"required,max=100"`
	OwnerEmail         string `json:"ownerEmail" binding:"required,email"`
}

// BusinessResponse defines data returned for a business.
type BusinessResponse struct {
	BusinessID         string    `json:"businessID"`
	Name               string    `json:"name"`
	AllowedEmailDomain string    `json:"allowedEmailDomain"`
	OwnerUserID        string    `json:"ownerUserID"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	CreatedBy          string    `json:"createdBy"`
	LastUpdatedAt      time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy      string    `json:"lastUpdatedBy"`
}

// ToBusinessResponse converts domain.Business to DTO.
func ToBusinessResponse(b *domain.Business) BusinessResponse {
	return BusinessResponse{
		BusinessID:         b.BusinessID,
		Name:               b.Name,
		AllowedEmailDomain: b.AllowedEmailDomain,
		OwnerUserID:        b.OwnerUserID,
		IsActive:           b.IsActive,
		CreatedAt:          b.CreatedAt,
		CreatedBy:          b.CreatedBy,
		LastUpdatedAt:      b.LastUpdatedAt,
		LastUpdatedBy:      b.LastUpdatedBy,
	}
}

// CreateBusinessResponse returns the new business together with its owner
// account.
type CreateBusinessResponse struct {
	Business BusinessResponse `json:"business"`
	Owner    UserResponse     `json:"owner"`
}

// ListBusinessesResponse wraps a list of businesses.
type ListBusinessesResponse struct {
	Businesses []BusinessResponse `json:"businesses"`
}

// ToListBusinessesResponse converts a slice of domain.Business to DTO.
func ToListBusinessesResponse(bs []domain.Business) ListBusinessesResponse {
	list := make([]BusinessResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBusinessResponse(&b)
	}
	return ListBusinessesResponse{Businesses: list}
}
