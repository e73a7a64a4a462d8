package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionOrderCreate  = "order.create"
	ActionStatusChange = "order.status_change"
	ActionPaymentLog   = "payment.log"
	ActionRefund       = "payment.refund"
	ActionReceiptPrint = "receipt.print"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"not null" json:"actor_type"`
	ActorID    *string           `json:"actor_id,omitempty"`
	Action     string            `gorm:"not null" json:"action"`
	TargetType string            `gorm:"not null" json:"target_type"`
	TargetID   *string           `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

type ListAuditLogRequest struct {
	Action     string
	TargetType string
	TargetID   string
	Limit      int
}

type Service interface {
	// Record writes one trail entry. Failures are logged by the service and
	// surfaced, but callers treat the trail as advisory and never roll back
	// domain state over it.
	Record(ctx context.Context, actor staffdomain.Identity, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
)
