package mapping

import (
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/models"
)

// ToModelBusiness converts a domain Business to a model Business
func ToModelBusiness(d domain.Business) models.Business {
	return models.Business{
		BusinessID:         d.BusinessID,
		Name:               d.Name,
		AllowedEmailDomain: d.AllowedEmailDomain,
		OwnerUserID:        d.OwnerUserID,
		IsActive:           d.IsActive,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBusiness converts a model Business to a domain Business
func ToDomainBusiness(m models.Business) domain.Business {
	return domain.Business{
		BusinessID:         m.BusinessID,
		Name:               m.Name,
		AllowedEmailDomain: m.AllowedEmailDomain,
		OwnerUserID:        m.OwnerUserID,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBusinessSlice converts a slice of model Businesses to domain Businesses
func ToDomainBusinessSlice(ms []models.Business) []domain.Business {
	ds := make([]domain.Business, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBusiness(m)
	}
	return ds
}
