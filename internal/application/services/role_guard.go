package services

import (
	"fmt"

	"github.com/nv0skar/Noisier/internal/domain/ports"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

// Wildcard in allowedRoles admits every authenticated user
const Wildcard = "*"

// NewRoleGuard returns a guard that reads the caller's role from roleField of
// the session identity. An empty roleField disables role checks.
func NewRoleGuard(roleField string) ports.RoleGuard {
	if roleField == "" {
		return nil
	}
	return func(identity ports.Identity, allowedRoles []string) error {
		role, ok := lookup(identity, roleField)
		for _, allowed := range allowedRoles {
			if allowed == Wildcard {
				return nil
			}
			if ok && role != nil && fmt.Sprint(role) == allowed {
				return nil
			}
		}
		return apperrors.ErrRoleNotAllowed
	}
}
