package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfmark/shelfmark/internal/entities"
)

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(entities.RoleAdmin, CapManageCatalog))
	assert.False(t, HasCapability(entities.RoleReader, CapManageCatalog))
	assert.False(t, HasCapability(entities.Role("ghost"), CapManageCatalog))
}

func TestRequireCapability(t *testing.T) {
	admin := &entities.Reader{Username: "admin", Role: entities.RoleAdmin}
	reader := &entities.Reader{Username: "alice", Role: entities.RoleReader}

	assert.NoError(t, RequireCapability(admin, CapManageCatalog))
	assert.ErrorIs(t, RequireCapability(reader, CapManageCatalog), ErrUnauthorized)
	assert.ErrorIs(t, RequireCapability(nil, CapManageCatalog), ErrUnauthorized)
}
