package service

import (
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
)

// validateRegistration decides whether self-registration is permitted for a
// role and whether the supplementary payload is sufficient. STAFF and ADMIN
// accounts are provisioned through owner/admin paths, never here.
func validateRegistration(role domain.Role, salon *dto.SalonData) error {
	switch role {
	case domain.RoleCustomer:
		return nil
	case domain.RoleSalonOwner:
		if salon == nil {
			return apperr.Validation("salon profile is required for salon owner registration")
		}
		if salon.Name == "" || salon.Address == "" || salon.City == "" ||
			salon.Country == "" || salon.Phone == "" || salon.Email == "" {
			return apperr.Validation("salon profile is missing required fields")
		}
		return nil
	case domain.RoleStaff:
		return apperr.Permission("staff accounts must be created by salon owners")
	case domain.RoleAdmin:
		return apperr.Permission("admin accounts cannot self-register")
	default:
		return apperr.Validation("invalid role: %s", role)
	}
}
