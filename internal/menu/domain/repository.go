package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *MenuItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MenuItem, error)
	List(ctx context.Context, db *gorm.DB) ([]*MenuItem, error)
	UpdateAvailability(ctx context.Context, db *gorm.DB, id snowflake.ID, available bool) (bool, error)
}
