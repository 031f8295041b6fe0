package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

var defaultGenres = []entities.Genre{
	{Name: "Fantasy"},
	{Name: "Science Fiction"},
	{Name: "Mystery"},
	{Name: "Thriller"},
	{Name: "Romance"},
	{Name: "Historical Fiction"},
	{Name: "Biography"},
	{Name: "Non-fiction"},
	{Name: "Horror"},
	{Name: "Poetry"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	log := logger.Get()

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Join rows and reviews rely on the store rejecting duplicates
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Reader{},
		&entities.Author{},
		&entities.Genre{},
		&entities.Book{},
		&entities.List{},
		&entities.ListBook{},
		&entities.Review{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedGenres(); err != nil {
		return nil, fmt.Errorf("failed to seed genres: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("database initialized")

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedGenres() error {
	log := logger.Get()
	for _, genre := range defaultGenres {
		var existing entities.Genre
		result := d.DB.Where("name = ?", genre.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&genre).Error; err != nil {
				return fmt.Errorf("failed to create genre %s: %w", genre.Name, err)
			}
			log.Debug().Str("genre", genre.Name).Msg("created genre")
		}
	}
	return nil
}

// Stats returns the catalog totals reported by the periodic snapshot job.
func (d *Database) Stats() (totalBooks, totalReaders, totalReviews int64, err error) {
	if err = d.DB.Model(&entities.Book{}).Count(&totalBooks).Error; err != nil {
		return
	}
	if err = d.DB.Model(&entities.Reader{}).Count(&totalReaders).Error; err != nil {
		return
	}
	err = d.DB.Model(&entities.Review{}).Count(&totalReviews).Error
	return
}
