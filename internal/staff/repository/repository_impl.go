package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/staff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Staff) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO staff (id, username, name, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.Username,
		member.Name,
		member.Role,
		member.PasswordHash,
		member.CreatedAt,
		member.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Staff, error) {
	var member domain.Staff
	err := db.WithContext(ctx).Raw(
		`SELECT id, username, name, role, password_hash, created_at, updated_at
		 FROM staff WHERE id = ?`,
		id,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Staff, error) {
	var members []*domain.Staff
	err := db.WithContext(ctx).
		Model(&domain.Staff{}).
		Order("name asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
