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

var ErrVerificationNotFound = errors.New("verification not found")

type VerificationRepository interface {
	GetByDiscordID(ctx context.Context, discordID string) (*models.Verification, error)
	GetByRobloxID(ctx context.Context, robloxID int64) (*models.Verification, error)
	Create(ctx context.Context, verification *models.Verification) error
}

type verificationRepository struct {
	db *bun.DB
}

func NewVerificationRepository(db *bun.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.Verification, error) {
	verification := new(models.Verification)
	err := r.db.NewSelect().
		Model(verification).
		Where("discord_id = ?", discordID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return verification, nil
}

func (r *verificationRepository) GetByRobloxID(ctx context.Context, robloxID int64) (*models.Verification, error) {
	verification := new(models.Verification)
	err := r.db.NewSelect().
		Model(verification).
		Where("roblox_id = ?", robloxID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return verification, nil
}

func (r *verificationRepository) Create(ctx context.Context, verification *models.Verification) error {
	verification.VerifiedAt = time.Now()
	if _, err := r.db.NewInsert().Model(verification).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}
