package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	menudomain "github.com/expediterhq/expediter/internal/menu/domain"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultPassword = "changeme"

type staffSeed struct {
	username string
	name     string
	role     staffdomain.Role
}

var defaultStaff = []staffSeed{
	{"admin", "Site Admin", staffdomain.RoleAdmin},
	{"chef", "Head Chef", staffdomain.RoleChef},
	{"waiter", "Floor Waiter", staffdomain.RoleWaiter},
	{"cashier", "Front Cashier", staffdomain.RoleCashier},
}

type menuSeed struct {
	name  string
	price int64
}

var defaultMenu = []menuSeed{
	{"Classic Burger", 1000},
	{"Fries", 500},
	{"Margherita Pizza", 1250},
	{"House Salad", 750},
	{"Soft Drink", 300},
}

// EnsureDefaults seeds the staff directory and menu catalog on first boot.
// Idempotent: existing usernames and item codes are left alone.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStaffTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureMenuTx(ctx, tx, node)
	})
}

func ensureStaffTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, seed := range defaultStaff {
		var existing staffdomain.Staff
		err := tx.WithContext(ctx).
			Where("username = ?", seed.username).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		member := staffdomain.Staff{
			ID:           node.Generate(),
			Username:     seed.username,
			Name:         seed.name,
			Role:         seed.role,
			PasswordHash: string(hashed),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureMenuTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, seed := range defaultMenu {
		code := slug.Make(seed.name)

		var existing menudomain.MenuItem
		err := tx.WithContext(ctx).
			Where("code = ?", code).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		item := menudomain.MenuItem{
			ID:        node.Generate(),
			Code:      code,
			Name:      seed.name,
			Price:     seed.price,
			Available: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}
