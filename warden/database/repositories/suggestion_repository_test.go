package repositories

import (
	"errors"
	"testing"

	"github.com/wardenbot/warden/warden/database/models"
)

func Test_resolveBallot(t *testing.T) {
	suggestion := &models.Suggestion{ID: 7, AuthorID: "111"}

	tests := []struct {
		name     string
		existing *models.SuggestionBallot
		voterID  string
		voteType string
		want     ballotChange
		wantErr  error
	}{
		{
			name:     "first upvote inserts",
			existing: nil,
			voterID:  "222",
			voteType: models.VoteUp,
			want:     ballotChange{insert: true, upDelta: 1},
		},
		{
			name:     "first downvote inserts",
			existing: nil,
			voterID:  "222",
			voteType: models.VoteDown,
			want:     ballotChange{insert: true, downDelta: 1},
		},
		{
			name:     "repeated upvote rejected",
			existing: &models.SuggestionBallot{VoteType: models.VoteUp},
			voterID:  "222",
			voteType: models.VoteUp,
			wantErr:  ErrDuplicateVote,
		},
		{
			name:     "repeated downvote rejected",
			existing: &models.SuggestionBallot{VoteType: models.VoteDown},
			voterID:  "222",
			voteType: models.VoteDown,
			wantErr:  ErrDuplicateVote,
		},
		{
			name:     "up to down flips and adjusts both tallies",
			existing: &models.SuggestionBallot{VoteType: models.VoteUp},
			voterID:  "222",
			voteType: models.VoteDown,
			want:     ballotChange{flip: true, upDelta: -1, downDelta: 1},
		},
		{
			name:     "down to up flips and adjusts both tallies",
			existing: &models.SuggestionBallot{VoteType: models.VoteDown},
			voterID:  "222",
			voteType: models.VoteUp,
			want:     ballotChange{flip: true, upDelta: 1, downDelta: -1},
		},
		{
			name:     "author voting on own suggestion rejected",
			existing: nil,
			voterID:  "111",
			voteType: models.VoteUp,
			wantErr:  ErrSelfVote,
		},
		{
			name:     "unknown vote type rejected",
			existing: nil,
			voterID:  "222",
			voteType: "sideways",
			wantErr:  ErrInvalidVoteType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBallot(suggestion, tt.existing, tt.voterID, tt.voteType)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveBallot() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveBallot() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveBallot() = %+v, want %+v", got, tt.want)
			}
			// A flip must move both tallies by exactly one each, in
			// opposite directions.
			if got.flip && got.upDelta+got.downDelta != 0 {
				t.Errorf("flip deltas do not cancel: up=%d down=%d", got.upDelta, got.downDelta)
			}
		})
	}
}
