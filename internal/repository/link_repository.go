package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reviewrelay/review-relay/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the MySQL connection shared by all repositories and migrates
// the schema. TranslateError is enabled so unique-key violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func NewDB(dsn string, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := db.AutoMigrate(&model.ShortLink{}, &model.Review{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// CloseDB closes the underlying connection pool
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LinkRepository is the MySQL-backed LinkStore
type LinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new link repository instance
func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new short link. The unique index on short_code turns a
// concurrent double-insert into ErrDuplicateCode for the loser.
func (r *LinkRepository) Create(ctx context.Context, link *model.ShortLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create short link: %w", err)
	}
	return nil
}

// GetByCode retrieves a short link by code, returning (nil, nil) when the
// code does not exist.
func (r *LinkRepository) GetByCode(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	var link model.ShortLink
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get short link: %w", err)
	}
	return &link, nil
}

// IncrementClicks increments the click counter for a short code
func (r *LinkRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Where("short_code = ?", shortCode).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error; err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// AllCodes lists every issued short code
func (r *LinkRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list short codes: %w", err)
	}
	return codes, nil
}

// DeleteExpired removes links past expiry or created before olderThan and
// returns the number of rows deleted.
func (r *LinkRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(expires_at IS NOT NULL AND expires_at < ?) OR created_at < ?", time.Now(), olderThan).
		Delete(&model.ShortLink{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired links: %w", res.Error)
	}
	return res.RowsAffected, nil
}
