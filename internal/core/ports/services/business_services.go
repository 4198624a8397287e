package services

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/dto"
)

// BusinessReaderSvc defines read operations for business data
type BusinessReaderSvc interface {
	// GetBusinessByID retrieves a business by ID.
	GetBusinessByID(ctx context.Context, businessID string) (*domain.Business, error)

	// ListBusinesses retrieves all businesses, newest first.
	ListBusinesses(ctx context.Context) ([]domain.Business, error)
}

// BusinessWriterSvc defines write operations for business data
type BusinessWriterSvc interface {
	// CreateBusiness creates a business together with its owner account and
	// returns both. The owner receives a provisional password delivered by
	// email.
	CreateBusiness(ctx context.Context, caller domain.Caller, req dto.CreateBusinessRequest) (*domain.Business, *domain.User, error)
}

// BusinessSvcFacade combines all business-related service interfaces
type BusinessSvcFacade interface {
	BusinessReaderSvc
	BusinessWriterSvc
}
