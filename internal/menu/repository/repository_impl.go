package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/menu/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.MenuItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO menu_items (id, code, name, price, available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Code,
		item.Name,
		item.Price,
		item.Available,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, price, available, created_at, updated_at
		 FROM menu_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	err := db.WithContext(ctx).
		Model(&domain.MenuItem{}).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateAvailability(ctx context.Context, db *gorm.DB, id snowflake.ID, available bool) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE menu_items SET available = ?, updated_at = ? WHERE id = ?`,
		available,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
