package entities

import (
	"time"
)

type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// Reader is an end-user account. The three default lists ("want to read",
// "reading", "read") are created in the same transaction as the reader row.
type Reader struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string `gorm:"size:100" json:"-"`
	ProfileImage string `gorm:"size:2048" json:"profile_image,omitempty"`
	Role         Role   `gorm:"size:20;default:'reader'" json:"role"`

	Lists []List `gorm:"foreignKey:ReaderID" json:"lists,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"index;size:256" json:"name"`
	Picture     string `gorm:"size:2048" json:"picture,omitempty"`
	Born        string `gorm:"size:64" json:"born,omitempty"`
	Died        string `gorm:"size:64" json:"died,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Books []Book `gorm:"foreignKey:AuthorID" json:"books,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100" json:"name"`

	Books []Book `gorm:"many2many:book_genres;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Book always belongs to exactly one author.
type Book struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Title          string `gorm:"index;size:512" json:"title"`
	Description    string `gorm:"type:text" json:"description,omitempty"`
	CoverArt       string `gorm:"size:2048" json:"cover_art,omitempty"`
	PageCount      int    `json:"page_count,omitempty"`
	PublishingDate string `gorm:"size:64" json:"publishing_date,omitempty"`
	AuthorID       uint   `gorm:"index;not null" json:"author_id"`

	Author  Author   `gorm:"foreignKey:AuthorID" json:"-"`
	Genres  []Genre  `gorm:"many2many:book_genres;" json:"genres,omitempty"`
	Reviews []Review `gorm:"foreignKey:BookID" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type List struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100" json:"name"`
	ReaderID uint   `gorm:"index" json:"reader_id"`

	Reader Reader `gorm:"foreignKey:ReaderID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// ListBook is the list membership join row. The composite unique index makes
// membership duplicate-free at the store level.
type ListBook struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	ListID uint `gorm:"uniqueIndex:idx_list_book;not null" json:"list_id"`
	BookID uint `gorm:"uniqueIndex:idx_list_book;not null" json:"book_id"`

	List List `gorm:"foreignKey:ListID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Review is keyed by (reader, book): at most one review per reader per book.
type Review struct {
	ReaderID uint   `gorm:"primaryKey;autoIncrement:false" json:"reader_id"`
	BookID   uint   `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	Score    int    `json:"score"`
	Comment  string `gorm:"type:text" json:"comment,omitempty"`

	Reader Reader `gorm:"foreignKey:ReaderID" json:"-"`
	Book   Book   `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Reader) TableName() string {
	return "readers"
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}

func (Book) TableName() string {
	return "books"
}

func (List) TableName() string {
	return "lists"
}

func (ListBook) TableName() string {
	return "list_books"
}

func (Review) TableName() string {
	return "reviews"
}
