// Package readers provides database operations for reader accounts.
//
// Registration lives in internal/auth, which owns the transaction that
// creates the reader together with its default lists.
package readers

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/entities"
)

var ErrReaderNotFound = errors.New("reader not found")

// Repository handles all reader database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new readers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetReaderByID retrieves a reader by id.
func (r *Repository) GetReaderByID(id uint) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.First(&reader, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}
	return &reader, nil
}

// GetReaderByUsername retrieves a reader by their unique username.
func (r *Repository) GetReaderByUsername(username string) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.Where("username = ?", username).First(&reader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}
	return &reader, nil
}
