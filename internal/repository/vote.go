package repository

import (
	"context"
	"fmt"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository/dao"
)

var (
	ErrTokenAlreadyUsed = dao.ErrTokenAlreadyUsed
	ErrAlreadyVoted     = dao.ErrAlreadyVoted
)

type VoteDAO interface {
	InsertCast(ctx context.Context, cast dao.BallotCast) (dao.BallotCast, error)
	IncrementCandidateVotes(ctx context.Context, candidateID uint) (int, error)
	IncrementPositionVotes(ctx context.Context, positionID uint) (int, error)
	IncrementElectionVotes(ctx context.Context, electionID uint) (int, error)
	CountDistinctVoters(ctx context.Context, electionID uint) (int, error)
}

type VoteRepository struct {
	dao VoteDAO
}

func NewVoteRepository(dao VoteDAO) *VoteRepository {
	return &VoteRepository{
		dao: dao,
	}
}

// RecordCast consumes the ballot. The dao surfaces which unique key
// rejected a duplicate; both sentinels pass through unchanged.
func (r *VoteRepository) RecordCast(ctx context.Context, cast domain.BallotCast) (domain.BallotCast, error) {
	created, err := r.dao.InsertCast(ctx, dao.BallotCast{
		ElectionID:  cast.ElectionID,
		PositionID:  cast.PositionID,
		CandidateID: cast.CandidateID,
		VoterID:     cast.VoterID,
		TokenHash:   cast.TokenHash,
	})
	if err != nil {
		return domain.BallotCast{}, fmt.Errorf("r.dao.InsertCast -> %w", err)
	}

	return domain.BallotCast{
		ID:          created.ID,
		ElectionID:  created.ElectionID,
		PositionID:  created.PositionID,
		CandidateID: created.CandidateID,
		VoterID:     created.VoterID,
		TokenHash:   created.TokenHash,
		CreatedAt:   created.CreatedAt,
	}, nil
}

func (r *VoteRepository) IncrementCandidateVotes(ctx context.Context, candidateID uint) (int, error) {
	count, err := r.dao.IncrementCandidateVotes(ctx, candidateID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementCandidateVotes -> %w", err)
	}

	return count, nil
}

func (r *VoteRepository) IncrementPositionVotes(ctx context.Context, positionID uint) (int, error) {
	count, err := r.dao.IncrementPositionVotes(ctx, positionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementPositionVotes -> %w", err)
	}

	return count, nil
}

func (r *VoteRepository) IncrementElectionVotes(ctx context.Context, electionID uint) (int, error) {
	count, err := r.dao.IncrementElectionVotes(ctx, electionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementElectionVotes -> %w", err)
	}

	return count, nil
}

func (r *VoteRepository) CountDistinctVoters(ctx context.Context, electionID uint) (int, error) {
	count, err := r.dao.CountDistinctVoters(ctx, electionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountDistinctVoters -> %w", err)
	}

	return count, nil
}
