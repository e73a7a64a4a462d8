package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MenuItem carries the catalog fields the order core reads. Prices are minor
// units (cents).
type MenuItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"not null" json:"name"`
	Price     int64        `gorm:"not null" json:"price"`
	Available bool         `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (MenuItem) TableName() string { return "menu_items" }
