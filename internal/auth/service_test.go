package auth

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/entities"
)

func setupTestService(t *testing.T, cfg config.Auth) (*Service, *gorm.DB, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Reader{}, &entities.List{})
	require.NoError(t, err)

	if cfg.BcryptCost == 0 {
		// MinCost keeps the hashing fast in tests
		cfg.BcryptCost = 4
	}
	service := NewService(db, cfg)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, db, cleanup
}

func TestService_Register(t *testing.T) {
	service, db, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	reader, err := service.Register("alice", "correct-horse", "alice.png")
	require.NoError(t, err)
	assert.NotZero(t, reader.ID)
	assert.Equal(t, "alice", reader.Username)
	assert.Equal(t, "alice.png", reader.ProfileImage)
	assert.Equal(t, entities.RoleReader, reader.Role)
	assert.NotEqual(t, "correct-horse", reader.PasswordHash)

	var lists []entities.List
	require.NoError(t, db.Where("reader_id = ?", reader.ID).Order("id ASC").Find(&lists).Error)
	require.Len(t, lists, 3)
	assert.Equal(t, "want to read", lists[0].Name)
	assert.Equal(t, "reading", lists[1].Name)
	assert.Equal(t, "read", lists[2].Name)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	service, db, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, err := service.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	_, err = service.Register("alice", "battery-staple", "")
	assert.ErrorIs(t, err, ErrUserExists)

	// The failed attempt must not leave partial rows behind
	var readerCount, listCount int64
	require.NoError(t, db.Model(&entities.Reader{}).Count(&readerCount).Error)
	require.NoError(t, db.Model(&entities.List{}).Count(&listCount).Error)
	assert.Equal(t, int64(1), readerCount)
	assert.Equal(t, int64(3), listCount)
}

func TestService_Register_Validation(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	_, err := service.Register("", "correct-horse", "")
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = service.Register("alice", "", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = service.Register("a", "correct-horse", "")
	assert.ErrorIs(t, err, ErrUsernameInvalid)

	_, err = service.Register("al ice", "correct-horse", "")
	assert.ErrorIs(t, err, ErrUsernameInvalid)

	_, err = service.Register("alice", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Authenticate(t *testing.T) {
	service, _, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	registered, err := service.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	reader, err := service.Authenticate("alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, reader.ID)

	_, err = service.Authenticate("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = service.Authenticate("nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_EnsureAdmin_CreatesAccount(t *testing.T) {
	service, db, cleanup := setupTestService(t, config.Auth{
		AdminUsername: "admin",
		AdminPassword: "admin-password",
	})
	defer cleanup()

	require.NoError(t, service.EnsureAdmin())

	var admin entities.Reader
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, entities.RoleAdmin, admin.Role)

	// The admin is a regular reader too and gets the default lists
	var listCount int64
	require.NoError(t, db.Model(&entities.List{}).Where("reader_id = ?", admin.ID).Count(&listCount).Error)
	assert.Equal(t, int64(3), listCount)

	// Second run is a no-op
	require.NoError(t, service.EnsureAdmin())
	var readerCount int64
	require.NoError(t, db.Model(&entities.Reader{}).Count(&readerCount).Error)
	assert.Equal(t, int64(1), readerCount)
}

func TestService_EnsureAdmin_PromotesExistingReader(t *testing.T) {
	service, db, cleanup := setupTestService(t, config.Auth{
		AdminUsername: "alice",
		AdminPassword: "admin-password",
	})
	defer cleanup()

	reader, err := service.Register("alice", "correct-horse", "")
	require.NoError(t, err)
	require.Equal(t, entities.RoleReader, reader.Role)

	require.NoError(t, service.EnsureAdmin())

	var promoted entities.Reader
	require.NoError(t, db.First(&promoted, reader.ID).Error)
	assert.Equal(t, entities.RoleAdmin, promoted.Role)
}

func TestService_EnsureAdmin_NotConfigured(t *testing.T) {
	service, db, cleanup := setupTestService(t, config.Auth{})
	defer cleanup()

	require.NoError(t, service.EnsureAdmin())

	var count int64
	require.NoError(t, db.Model(&entities.Reader{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
