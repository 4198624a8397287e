package dto

import (
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// UserResponse defines the account data returned to clients.
type UserResponse struct {
	UserID             string             `json:"userID"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Role               domain.UserRole    `json:"role"`
	BusinessID         *string            `json:"businessID,omitempty"`
	BusinessAdmin      bool               `json:"businessAdmin,omitempty"`
	IsActive           bool               `json:"isActive"`
	MustChangePassword bool               `json:"mustChangePassword"`
	HasPaid            bool               `json:"hasPaid"`
	Package            domain.PackageTier `json:"package,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:             user.UserID,
		Email:              user.Email,
		Name:               user.Name,
		Role:               user.Role,
		BusinessID:         user.BusinessID,
		BusinessAdmin:      user.BusinessAdmin,
		IsActive:           user.IsActive,
		MustChangePassword: user.MustChangePassword,
		HasPaid:            user.HasPaid,
		Package:            user.Package,
		CreatedAt:          user.CreatedAt,
	}
}
