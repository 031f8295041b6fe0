package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("username already taken")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// DefaultListNames are created for every reader at registration, in order.
var DefaultListNames = []string{"want to read", "reading", "read"}

// Service handles registration, authentication, and admin bootstrap.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Register creates a reader and their default lists in one transaction.
// A duplicate username fails without creating any rows.
func (s *Service) Register(username, password, profileImage string) (*entities.Reader, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	reader := &entities.Reader{
		Username:     username,
		PasswordHash: passwordHash,
		ProfileImage: profileImage,
		Role:         entities.RoleReader,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Reader
		err := tx.Where("username = ?", username).First(&existing).Error
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing reader: %w", err)
		}

		if err := tx.Create(reader).Error; err != nil {
			return fmt.Errorf("failed to create reader: %w", err)
		}

		for _, name := range DefaultListNames {
			list := entities.List{Name: name, ReaderID: reader.ID}
			if err := tx.Create(&list).Error; err != nil {
				return fmt.Errorf("failed to create default list %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info().Str("username", username).Uint("id", reader.ID).Msg("reader registered")
	return reader, nil
}

// Authenticate validates credentials and returns the reader.
func (s *Service) Authenticate(username, password string) (*entities.Reader, error) {
	var reader entities.Reader
	err := s.db.Where("username = ?", username).First(&reader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find reader: %w", err)
	}

	if err := CheckPassword(password, reader.PasswordHash); err != nil {
		return nil, err
	}

	return &reader, nil
}

// GetReaderByID retrieves a reader by their id.
func (s *Service) GetReaderByID(id uint) (*entities.Reader, error) {
	var reader entities.Reader
	err := s.db.First(&reader, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &reader, nil
}

// EnsureAdmin creates the configured admin account if it does not exist yet.
// An existing reader with that username is promoted to admin. No-op when the
// bootstrap credentials are not configured.
func (s *Service) EnsureAdmin() error {
	log := logger.Get()
	username := s.config.AdminUsername
	password := s.config.AdminPassword
	if username == "" || password == "" {
		log.Debug().Msg("admin bootstrap not configured")
		return nil
	}

	var existing entities.Reader
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		if existing.Role == entities.RoleAdmin {
			return nil
		}
		if err := s.db.Model(&existing).Update("role", entities.RoleAdmin).Error; err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
		log.Info().Str("username", username).Msg("promoted reader to admin")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	admin, err := s.Register(username, password, "")
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	if err := s.db.Model(admin).Update("role", entities.RoleAdmin).Error; err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}
	log.Info().Str("username", username).Msg("admin account created")
	return nil
}
