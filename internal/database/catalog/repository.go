// Package catalog provides database operations for the book catalog: single
// lookups, the paginated listing, and the title/author/genre search.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	books, totalPages, err := repo.PageBooks(1, 20, nil)
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrAuthorNotFound  = errors.New("author not found")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrInvalidPage     = errors.New("page and count must be at least 1")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a single book.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetAuthorByID retrieves a single author.
func (r *Repository) GetAuthorByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// GetBooksByAuthor returns all books owned by an author, ordered by id.
func (r *Repository) GetBooksByAuthor(authorID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("author_id = ?", authorID).Order("id ASC").Find(&books).Error
	return books, err
}

// GetGenresForBook returns the genres associated with a book.
func (r *Repository) GetGenresForBook(bookID uint) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.
		Joins("JOIN book_genres bg ON bg.genre_id = genres.id").
		Where("bg.book_id = ?", bookID).
		Order("genres.id ASC").
		Find(&genres).Error
	return genres, err
}

// PageBooks returns one page of books, optionally restricted to a set of
// author ids, plus the total page count for that filter. The count and the
// page fetch share the same predicate so total_pages always agrees with the
// rows pages actually contain. An empty author set means no filter.
func (r *Repository) PageBooks(page, count int, authorIDs []uint) ([]entities.Book, int, error) {
	log := logger.Get()
	if page < 1 || count < 1 {
		return nil, 0, ErrInvalidPage
	}

	filtered := func() *gorm.DB {
		q := r.db.Model(&entities.Book{})
		if len(authorIDs) > 0 {
			q = q.Where("author_id IN ?", authorIDs)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("failed to count books")
		return nil, 0, err
	}

	var books []entities.Book
	err := filtered().
		Order("id ASC").
		Limit(count).
		Offset((page - 1) * count).
		Find(&books).Error
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch book page")
		return nil, 0, err
	}

	return books, totalPages(total, count), nil
}

// SearchBooks matches term as a case-insensitive substring of the book title,
// the author name, or any associated genre name. The candidate set is the
// deduplicated union of the three match paths; a book matching on several
// criteria appears and is counted exactly once. An optional author-id set
// restricts every match path identically.
func (r *Repository) SearchBooks(term string, page, count int, authorIDs []uint) ([]entities.Book, int, error) {
	log := logger.Get()
	if page < 1 || count < 1 {
		return nil, 0, ErrInvalidPage
	}

	matchSQL, matchArgs := buildMatchSet(term, authorIDs)

	var total int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s) matches", matchSQL)
	if err := r.db.Raw(countSQL, matchArgs...).Scan(&total).Error; err != nil {
		log.Error().Err(err).Str("term", term).Msg("failed to count search matches")
		return nil, 0, err
	}

	pageSQL := fmt.Sprintf(
		"SELECT b.* FROM (%s) matches JOIN books b ON b.id = matches.id ORDER BY b.id ASC LIMIT ? OFFSET ?",
		matchSQL,
	)
	pageArgs := append(append([]interface{}{}, matchArgs...), count, (page-1)*count)

	var books []entities.Book
	if err := r.db.Raw(pageSQL, pageArgs...).Scan(&books).Error; err != nil {
		log.Error().Err(err).Str("term", term).Msg("failed to fetch search page")
		return nil, 0, err
	}

	return books, totalPages(total, count), nil
}

// buildMatchSet assembles the deduplicated candidate-id query shared by the
// search count and the search page. UNION collapses books matching more than
// one path.
func buildMatchSet(term string, authorIDs []uint) (string, []interface{}) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	authorFilter := ""
	if len(authorIDs) > 0 {
		authorFilter = " AND b.author_id IN ?"
	}

	branches := []string{
		`SELECT b.id FROM books b WHERE LOWER(b.title) LIKE ? ESCAPE '\'` + authorFilter,
		`SELECT b.id FROM books b JOIN authors a ON b.author_id = a.id WHERE LOWER(a.name) LIKE ? ESCAPE '\'` + authorFilter,
		`SELECT b.id FROM books b JOIN book_genres bg ON b.id = bg.book_id JOIN genres g ON bg.genre_id = g.id WHERE LOWER(g.name) LIKE ? ESCAPE '\'` + authorFilter,
	}

	var args []interface{}
	for range branches {
		args = append(args, pattern)
		if len(authorIDs) > 0 {
			args = append(args, authorIDs)
		}
	}

	return strings.Join(branches, " UNION "), args
}

// escapeLike makes LIKE metacharacters in user input match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func totalPages(total int64, count int) int {
	return int((total + int64(count) - 1) / int64(count))
}

// CreateBook inserts a new book after checking its author exists, so callers
// get a domain error instead of a bare constraint violation.
func (r *Repository) CreateBook(book *entities.Book) error {
	if _, err := r.GetAuthorByID(book.AuthorID); err != nil {
		return err
	}
	if err := r.db.Create(book).Error; err != nil {
		logger.Get().Error().Err(err).Str("title", book.Title).Msg("failed to create book")
		return err
	}
	return nil
}

// UpdateBook applies a partial column update and returns the updated row.
// An empty update set is rejected rather than silently succeeding.
func (r *Repository) UpdateBook(id uint, updates map[string]interface{}) (*entities.Book, error) {
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	if authorID, ok := updates["author_id"]; ok {
		aid, isUint := authorID.(uint)
		if isUint {
			if _, err := r.GetAuthorByID(aid); err != nil {
				return nil, err
			}
		}
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Get().Error().Err(result.Error).Uint("id", id).Msg("failed to update book")
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookNotFound
	}

	return r.GetBookByID(id)
}

// DeleteBook removes a book. Zero rows affected is reported as false, not as
// an error.
func (r *Repository) DeleteBook(id uint) (bool, error) {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		logger.Get().Error().Err(result.Error).Uint("id", id).Msg("failed to delete book")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AssignGenres associates genres with a book, leaving existing associations
// in place. The join table's uniqueness keeps the association duplicate-free.
func (r *Repository) AssignGenres(bookID uint, genreIDs []uint) error {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	var genres []entities.Genre
	if err := r.db.Find(&genres, genreIDs).Error; err != nil {
		return err
	}
	return r.db.Model(&book).Association("Genres").Append(&genres)
}

// CreateAuthor inserts a new author.
func (r *Repository) CreateAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

// GetGenreByName retrieves a genre by its unique name.
func (r *Repository) GetGenreByName(name string) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.Where("name = ?", name).First(&genre).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}
