package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenAlreadyUsed = errors.New("ballot token already used")
	ErrAlreadyVoted     = errors.New("voter already cast a vote for this position")
)

// BallotCast carries two unique keys: the token hash makes a ballot
// single-use, the (voter, position) pair blocks a second vote through a
// freshly issued token. One INSERT checks both.
type BallotCast struct {
	ID uint `gorm:"primaryKey"`

	ElectionID  uint   `gorm:"not null;index"`
	PositionID  uint   `gorm:"not null;uniqueIndex:idx_ballot_casts_voter_position"`
	CandidateID uint   `gorm:"not null"`
	VoterID     uint   `gorm:"not null;uniqueIndex:idx_ballot_casts_voter_position"`
	TokenHash   string `gorm:"not null;uniqueIndex:idx_ballot_casts_token_hash"`

	CreatedAt time.Time `gorm:"not null"`
}

type VoteDAO struct {
	db *gorm.DB
}

func NewVoteDAO(db *gorm.DB) *VoteDAO {
	return &VoteDAO{
		db: db,
	}
}

// InsertCast is the consumption point. Whichever of two concurrent
// inserts commits second loses on the unique index, so exactly one
// redemption of a token (or of a voter's vote in a race) can succeed.
func (d *VoteDAO) InsertCast(ctx context.Context, cast BallotCast) (BallotCast, error) {
	result := d.db.WithContext(ctx).Create(&cast)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			if strings.Contains(err.Message, `unique constraint "idx_ballot_casts_token_hash"`) {
				return BallotCast{}, ErrTokenAlreadyUsed
			}
			if strings.Contains(err.Message, `unique constraint "idx_ballot_casts_voter_position"`) {
				return BallotCast{}, ErrAlreadyVoted
			}
		}

		return BallotCast{}, result.Error
	}

	return cast, nil
}

// IncrementCandidateVotes bumps the counter in the database and returns
// the fresh value via RETURNING, never a read-modify-write in Go.
func (d *VoteDAO) IncrementCandidateVotes(ctx context.Context, candidateID uint) (int, error) {
	var candidate Candidate

	result := d.db.WithContext(ctx).
		Model(&candidate).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "votes_count"}}}).
		Where("id = ?", candidateID).
		UpdateColumn("votes_count", gorm.Expr("votes_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrCandidateNotFound
	}

	return candidate.VotesCount, nil
}

func (d *VoteDAO) IncrementPositionVotes(ctx context.Context, positionID uint) (int, error) {
	var position Position

	result := d.db.WithContext(ctx).
		Model(&position).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "total_votes"}}}).
		Where("id = ?", positionID).
		UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrPositionNotFound
	}

	return position.TotalVotes, nil
}

func (d *VoteDAO) IncrementElectionVotes(ctx context.Context, electionID uint) (int, error) {
	var election Election

	result := d.db.WithContext(ctx).
		Model(&election).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "total_votes_cast"}}}).
		Where("id = ?", electionID).
		UpdateColumn("total_votes_cast", gorm.Expr("total_votes_cast + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrElectionNotFound
	}

	return election.TotalVotesCast, nil
}

// CountDistinctVoters feeds the turnout calculation at close time.
func (d *VoteDAO) CountDistinctVoters(ctx context.Context, electionID uint) (int, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&BallotCast{}).
		Where("election_id = ?", electionID).
		Distinct("voter_id").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(count), nil
}
