package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status      Status
	Type        OrderType
	KitchenView bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Order, error)

	// UpdateStatus applies a version-guarded status write. Returns false when
	// the guard missed (row changed since it was read).
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, updatedAt time.Time, version int64) (bool, error)

	// UpdatePayment rewrites the ledger and derived payment status under the
	// same version guard.
	UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, logs datatypes.JSONSlice[PaymentLogEntry], paymentStatus PaymentStatus, updatedAt time.Time, version int64) (bool, error)

	// UpdatePaymentStatus flips only the derived status (refund path).
	UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentStatus PaymentStatus, updatedAt time.Time, version int64) (bool, error)

	// IncrementPrinted bumps the print counter with the store's native atomic
	// update; no guard needed because the increment commutes.
	IncrementPrinted(ctx context.Context, db *gorm.DB, id snowflake.ID, updatedAt time.Time) (bool, error)
}
