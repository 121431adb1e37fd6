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
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSelfVote           = errors.New("cannot vote on your own suggestion")
	ErrDuplicateVote      = errors.New("already voted this way")
	ErrInvalidVoteType    = errors.New("invalid vote type")
)

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id int64) (*models.Suggestion, error)
	GetAllByGuild(ctx context.Context, guildID string) ([]*models.Suggestion, error)
	CastBallot(ctx context.Context, suggestionID int64, voterID, voteType string) (*models.Suggestion, error)
	CountBallots(ctx context.Context, suggestionID int64, voteType string) (int, error)
}

type suggestionRepository struct {
	db *bun.DB
}

func NewSuggestionRepository(db *bun.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	suggestion.Status = models.SuggestionStatusPending
	suggestion.CreatedAt = time.Now()
	suggestion.UpdatedAt = suggestion.CreatedAt

	if _, err := r.db.NewInsert().Model(suggestion).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int64) (*models.Suggestion, error) {
	suggestion := new(models.Suggestion)
	err := r.db.NewSelect().
		Model(suggestion).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return suggestion, nil
}

func (r *suggestionRepository) GetAllByGuild(ctx context.Context, guildID string) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	err := r.db.NewSelect().
		Model(&suggestions).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}

// ballotChange describes how a cast vote mutates the ballot row and the
// aggregate counters. Deltas are applied in the same transaction as the
// ballot mutation so the counters can never drift from the rows.
type ballotChange struct {
	insert    bool
	flip      bool
	upDelta   int
	downDelta int
}

func resolveBallot(suggestion *models.Suggestion, existing *models.SuggestionBallot, voterID, voteType string) (ballotChange, error) {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return ballotChange{}, ErrInvalidVoteType
	}

	if suggestion.AuthorID == voterID {
		return ballotChange{}, ErrSelfVote
	}

	if existing == nil {
		change := ballotChange{insert: true}
		if voteType == models.VoteUp {
			change.upDelta = 1
		} else {
			change.downDelta = 1
		}
		return change, nil
	}

	if existing.VoteType == voteType {
		return ballotChange{}, ErrDuplicateVote
	}

	change := ballotChange{flip: true}
	if voteType == models.VoteUp {
		change.upDelta, change.downDelta = 1, -1
	} else {
		change.upDelta, change.downDelta = -1, 1
	}
	return change, nil
}

// CastBallot records a vote, rejecting self-votes and duplicates and
// flipping an opposite vote in place. The ballot row and the counter
// adjustment commit in one transaction.
func (r *suggestionRepository) CastBallot(ctx context.Context, suggestionID int64, voterID, voteType string) (*models.Suggestion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	suggestion := new(models.Suggestion)
	err = tx.NewSelect().
		Model(suggestion).
		Where("id = ?", suggestionID).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock suggestion: %w", err)
	}

	existing := new(models.SuggestionBallot)
	err = tx.NewSelect().
		Model(existing).
		Where("suggestion_id = ?", suggestionID).
		Where("voter_id = ?", voterID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		existing = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up ballot: %w", err)
	}

	change, err := resolveBallot(suggestion, existing, voterID, voteType)
	if err != nil {
		return nil, err
	}

	switch {
	case change.insert:
		ballot := &models.SuggestionBallot{
			SuggestionID: suggestionID,
			VoterID:      voterID,
			VoteType:     voteType,
			CreatedAt:    time.Now(),
		}
		if _, err := tx.NewInsert().Model(ballot).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to insert ballot: %w", err)
		}
	case change.flip:
		if _, err := tx.NewUpdate().
			Model((*models.SuggestionBallot)(nil)).
			Set("vote_type = ?", voteType).
			Where("suggestion_id = ?", suggestionID).
			Where("voter_id = ?", voterID).
			Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to flip ballot: %w", err)
		}
	}

	if _, err := tx.NewUpdate().
		Model((*models.Suggestion)(nil)).
		Set("upvotes = upvotes + ?", change.upDelta).
		Set("downvotes = downvotes + ?", change.downDelta).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", suggestionID).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to adjust tallies: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ballot: %w", err)
	}

	suggestion.Upvotes += change.upDelta
	suggestion.Downvotes += change.downDelta
	return suggestion, nil
}

func (r *suggestionRepository) CountBallots(ctx context.Context, suggestionID int64, voteType string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.SuggestionBallot)(nil)).
		Where("suggestion_id = ?", suggestionID).
		Where("vote_type = ?", voteType).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	return count, nil
}
