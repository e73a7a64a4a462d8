package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/expediterhq/expediter/internal/order/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, order_number, type, table_number, customer, items,
			subtotal, tax, total, status, server_id,
			payment_status, payment_logs, printed_count, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderNumber,
		order.Type,
		order.TableNumber,
		order.Customer,
		order.Items,
		order.Subtotal,
		order.Tax,
		order.Total,
		order.Status,
		order.ServerID,
		order.PaymentStatus,
		order.PaymentLogs,
		order.PrintedCount,
		order.Version,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Order, error) {
	query := db.WithContext(ctx).Model(&domain.Order{})

	if filter.KitchenView {
		query = query.Where("status IN ?", []domain.Status{domain.StatusPending, domain.StatusPreparing})
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var orders []*domain.Order
	err := query.Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, updatedAt time.Time, version int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		status, updatedAt, id, version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, logs datatypes.JSONSlice[domain.PaymentLogEntry], paymentStatus domain.PaymentStatus, updatedAt time.Time, version int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_logs = ?, payment_status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		logs, paymentStatus, updatedAt, id, version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentStatus domain.PaymentStatus, updatedAt time.Time, version int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		paymentStatus, updatedAt, id, version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IncrementPrinted(ctx context.Context, db *gorm.DB, id snowflake.ID, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET printed_count = printed_count + 1, updated_at = ?
		 WHERE id = ?`,
		updatedAt, id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
