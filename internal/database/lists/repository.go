// Package lists provides database operations for reader-owned book lists.
package lists

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

var ErrListNotFound = errors.New("list not found")

// Repository handles all list database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new lists repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetListByID retrieves a single list.
func (r *Repository) GetListByID(id uint) (*entities.List, error) {
	var list entities.List
	err := r.db.First(&list, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

// GetListsForReader returns all lists owned by a reader, ordered by id.
func (r *Repository) GetListsForReader(readerID uint) ([]entities.List, error) {
	var lists []entities.List
	err := r.db.Where("reader_id = ?", readerID).Order("id ASC").Find(&lists).Error
	return lists, err
}

// AddBookToList inserts a membership row. Adding a book that is already on
// the list is a no-op, not an error.
func (r *Repository) AddBookToList(listID, bookID uint) error {
	if _, err := r.GetListByID(listID); err != nil {
		return err
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.ListBook{ListID: listID, BookID: bookID}).Error
	if err != nil {
		logger.Get().Error().Err(err).Uint("list_id", listID).Uint("book_id", bookID).
			Msg("failed to add book to list")
	}
	return err
}

// RemoveBookFromList deletes a membership row, reporting whether one existed.
func (r *Repository) RemoveBookFromList(listID, bookID uint) (bool, error) {
	result := r.db.Where("list_id = ? AND book_id = ?", listID, bookID).
		Delete(&entities.ListBook{})
	if result.Error != nil {
		logger.Get().Error().Err(result.Error).Uint("list_id", listID).Uint("book_id", bookID).
			Msg("failed to remove book from list")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetBooksForList returns the books on a list in join order.
func (r *Repository) GetBooksForList(listID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Joins("JOIN list_books lb ON lb.book_id = books.id").
		Where("lb.list_id = ?", listID).
		Order("lb.id ASC").
		Find(&books).Error
	return books, err
}

// GetBookCount returns how many books a list contains.
func (r *Repository) GetBookCount(listID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ListBook{}).Where("list_id = ?", listID).Count(&count).Error
	return count, err
}
