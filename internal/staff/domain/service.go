package domain

import (
	"context"
	"errors"
)

type CreateStaffRequest struct {
	Username string
	Name     string
	Role     string
	Password string
}

type Service interface {
	Create(ctx context.Context, req CreateStaffRequest) (Staff, error)
	Resolve(ctx context.Context, id string) (Identity, error)
	List(ctx context.Context) ([]Staff, error)
}

var (
	ErrInvalidID       = errors.New("invalid_staff_id")
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidName     = errors.New("invalid_staff_name")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrNotFound        = errors.New("staff_not_found")
)
