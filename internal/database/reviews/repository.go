// Package reviews provides database operations for book reviews.
//
// A review is keyed by (reader, book). Submitting a second review for the
// same pair overwrites the first one (upsert).
package reviews

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertReview creates or overwrites the review for (readerID, bookID).
func (r *Repository) UpsertReview(readerID, bookID uint, score int, comment string) (*entities.Review, error) {
	review := entities.Review{
		ReaderID: readerID,
		BookID:   bookID,
		Score:    score,
		Comment:  comment,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reader_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(&review).Error
	if err != nil {
		logger.Get().Error().Err(err).Uint("reader_id", readerID).Uint("book_id", bookID).
			Msg("failed to save review")
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes the review for (readerID, bookID), reporting whether
// one existed.
func (r *Repository) DeleteReview(readerID, bookID uint) (bool, error) {
	result := r.db.Where("reader_id = ? AND book_id = ?", readerID, bookID).
		Delete(&entities.Review{})
	if result.Error != nil {
		logger.Get().Error().Err(result.Error).Uint("reader_id", readerID).Uint("book_id", bookID).
			Msg("failed to delete review")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetReviewsForBook returns all reviews of a book.
func (r *Repository) GetReviewsForBook(bookID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("book_id = ?", bookID).Order("reader_id ASC").Find(&reviews).Error
	return reviews, err
}

// GetReviewsForReader returns all reviews authored by a reader.
func (r *Repository) GetReviewsForReader(readerID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("reader_id = ?", readerID).Order("book_id ASC").Find(&reviews).Error
	return reviews, err
}

// GetAverageScore returns the mean review score of a book, or nil when the
// book has no reviews. A missing average is distinct from an average of zero.
func (r *Repository) GetAverageScore(bookID uint) (*float64, error) {
	var avg *float64
	err := r.db.Model(&entities.Review{}).
		Where("book_id = ?", bookID).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// GetReviewCount returns how many reviews a book has.
func (r *Repository) GetReviewCount(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Review{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}
