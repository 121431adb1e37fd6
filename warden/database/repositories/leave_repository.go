package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenbot/warden/warden/database/models"
)

var (
	ErrLeaveNotFound        = errors.New("leave request not found")
	ErrLeaveAlreadyResolved = errors.New("leave request already resolved")
	ErrInvalidLeaveDays     = errors.New("leave days out of bounds")
)

type LeaveRepository interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*models.LeaveRequest, error)
	Resolve(ctx context.Context, id int64, status, resolvedBy string) error
}

type leaveRepository struct {
	db *bun.DB
}

func NewLeaveRepository(db *bun.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	if request.Days < models.MinLeaveDays || request.Days > models.MaxLeaveDays {
		return ErrInvalidLeaveDays
	}
	request.Status = models.LeaveStatusPending
	request.CreatedAt = time.Now()

	if _, err := r.db.NewInsert().Model(request).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

func (r *leaveRepository) GetByID(ctx context.Context, id int64) (*models.LeaveRequest, error) {
	request := new(models.LeaveRequest)
	err := r.db.NewSelect().
		Model(request).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

// Resolve transitions a pending request to approved or denied. A resolved
// request is immutable; a second decision gets ErrLeaveAlreadyResolved.
func (r *leaveRepository) Resolve(ctx context.Context, id int64, status, resolvedBy string) error {
	if status != models.LeaveStatusApproved && status != models.LeaveStatusDenied {
		return fmt.Errorf("invalid leave resolution %q", status)
	}

	result, err := r.db.NewUpdate().
		Model((*models.LeaveRequest)(nil)).
		Set("status = ?", status).
		Set("resolved_by = ?", resolvedBy).
		Set("resolved_at = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ?", models.LeaveStatusPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve leave request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLeaveAlreadyResolved
	}
	return nil
}
