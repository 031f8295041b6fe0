package auth

import (
	"errors"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// Capability names a privileged action a role may perform.
type Capability string

const (
	// CapManageCatalog gates book create/update/delete.
	CapManageCatalog Capability = "manage_catalog"
)

var ErrUnauthorized = errors.New("unauthorized: admin access required")

var roleCapabilities = map[entities.Role]map[Capability]bool{
	entities.RoleAdmin: {
		CapManageCatalog: true,
	},
	entities.RoleReader: {},
}

// HasCapability reports whether a role grants a capability. Unknown roles
// grant nothing.
func HasCapability(role entities.Role, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// RequireCapability returns ErrUnauthorized unless the reader's role grants
// the capability. Callers must run this before any store mutation.
func RequireCapability(reader *entities.Reader, cap Capability) error {
	if reader == nil || !HasCapability(reader.Role, cap) {
		return ErrUnauthorized
	}
	return nil
}
