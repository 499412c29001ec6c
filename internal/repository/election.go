package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository/dao"
)

var (
	ErrElectionNotFound  = dao.ErrElectionNotFound
	ErrPositionNotFound  = dao.ErrPositionNotFound
	ErrCandidateNotFound = dao.ErrCandidateNotFound
)

type ElectionDAO interface {
	Insert(ctx context.Context, election dao.Election) (dao.Election, error)
	FindByID(ctx context.Context, id uint) (dao.Election, error)
	FindByIDWithRaces(ctx context.Context, id uint, includeWithdrawn bool) (dao.Election, error)
	List(ctx context.Context, filter dao.ElectionFilter) ([]dao.Election, error)
	TransitionStatus(ctx context.Context, id uint, fromStatus, toStatus string) (bool, error)
	Approve(ctx context.Context, id uint, approverID uint, at time.Time) (bool, error)
	SetTurnout(ctx context.Context, id uint, turnout float64) error
	InsertPosition(ctx context.Context, position dao.Position) (dao.Position, error)
	FindPosition(ctx context.Context, id uint) (dao.Position, error)
	InsertCandidate(ctx context.Context, candidate dao.Candidate) (dao.Candidate, error)
	FindCandidate(ctx context.Context, id uint) (dao.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate dao.Candidate) (dao.Candidate, error)
	WithdrawCandidate(ctx context.Context, id uint) (dao.Candidate, error)
}

type ElectionFilter struct {
	Status    domain.ElectionStatus
	ChapterID *uint
	National  bool
}

type ElectionRepository struct {
	dao ElectionDAO
}

func NewElectionRepository(dao ElectionDAO) *ElectionRepository {
	return &ElectionRepository{
		dao: dao,
	}
}

func (r *ElectionRepository) Create(ctx context.Context, election domain.Election) (domain.Election, error) {
	created, err := r.dao.Insert(ctx, dao.Election{
		Title:               election.Title,
		ChapterID:           election.ChapterID,
		StartsAt:            election.StartsAt,
		EndsAt:              election.EndsAt,
		Status:              dao.StatusPending,
		CreatedBy:           election.CreatedBy,
		RequireVerification: election.RequireVerification,
		PublicResults:       election.PublicResults,
		EligibleVoters:      election.EligibleVoters,
	})
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id uint) (domain.Election, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ElectionRepository) FindByIDWithRaces(ctx context.Context, id uint, includeWithdrawn bool) (domain.Election, error) {
	found, err := r.dao.FindByIDWithRaces(ctx, id, includeWithdrawn)
	if err != nil {
		return domain.Election{}, fmt.Errorf("r.dao.FindByIDWithRaces -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ElectionRepository) List(ctx context.Context, filter ElectionFilter) ([]domain.Election, error) {
	found, err := r.dao.List(ctx, dao.ElectionFilter{
		Status:    string(filter.Status),
		ChapterID: filter.ChapterID,
		National:  filter.National,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	elections := make([]domain.Election, 0, len(found))
	for _, e := range found {
		elections = append(elections, r.daoToDomain(e))
	}

	return elections, nil
}

// Transition performs the compare-and-swap status change. A false
// return reports the election was not in the expected source status.
func (r *ElectionRepository) Transition(ctx context.Context, id uint, from, to domain.ElectionStatus) (bool, error) {
	ok, err := r.dao.TransitionStatus(ctx, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("r.dao.TransitionStatus -> %w", err)
	}

	return ok, nil
}

func (r *ElectionRepository) Approve(ctx context.Context, id uint, approverID uint, at time.Time) (bool, error) {
	ok, err := r.dao.Approve(ctx, id, approverID, at)
	if err != nil {
		return false, fmt.Errorf("r.dao.Approve -> %w", err)
	}

	return ok, nil
}

func (r *ElectionRepository) SetTurnout(ctx context.Context, id uint, turnout float64) error {
	if err := r.dao.SetTurnout(ctx, id, turnout); err != nil {
		return fmt.Errorf("r.dao.SetTurnout -> %w", err)
	}

	return nil
}

func (r *ElectionRepository) CreatePosition(ctx context.Context, position domain.Position) (domain.Position, error) {
	created, err := r.dao.InsertPosition(ctx, dao.Position{
		ElectionID: position.ElectionID,
		Name:       position.Name,
		OrderIndex: position.OrderIndex,
	})
	if err != nil {
		return domain.Position{}, fmt.Errorf("r.dao.InsertPosition -> %w", err)
	}

	return r.positionDaoToDomain(created), nil
}

func (r *ElectionRepository) FindPosition(ctx context.Context, id uint) (domain.Position, error) {
	found, err := r.dao.FindPosition(ctx, id)
	if err != nil {
		return domain.Position{}, fmt.Errorf("r.dao.FindPosition -> %w", err)
	}

	return r.positionDaoToDomain(found), nil
}

func (r *ElectionRepository) CreateCandidate(ctx context.Context, candidate domain.Candidate) (domain.Candidate, error) {
	created, err := r.dao.InsertCandidate(ctx, dao.Candidate{
		PositionID: candidate.PositionID,
		Name:       candidate.Name,
		Manifesto:  candidate.Manifesto,
		MediaURL:   candidate.MediaURL,
		OrderIndex: candidate.OrderIndex,
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("r.dao.InsertCandidate -> %w", err)
	}

	return r.candidateDaoToDomain(created, 0), nil
}

func (r *ElectionRepository) FindCandidate(ctx context.Context, id uint) (domain.Candidate, error) {
	found, err := r.dao.FindCandidate(ctx, id)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("r.dao.FindCandidate -> %w", err)
	}

	return r.candidateDaoToDomain(found, 0), nil
}

func (r *ElectionRepository) UpdateCandidate(ctx context.Context, candidate domain.Candidate) (domain.Candidate, error) {
	updated, err := r.dao.UpdateCandidate(ctx, dao.Candidate{
		ID:         candidate.ID,
		Name:       candidate.Name,
		Manifesto:  candidate.Manifesto,
		MediaURL:   candidate.MediaURL,
		OrderIndex: candidate.OrderIndex,
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("r.dao.UpdateCandidate -> %w", err)
	}

	return r.candidateDaoToDomain(updated, 0), nil
}

func (r *ElectionRepository) WithdrawCandidate(ctx context.Context, id uint) (domain.Candidate, error) {
	withdrawn, err := r.dao.WithdrawCandidate(ctx, id)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("r.dao.WithdrawCandidate -> %w", err)
	}

	return r.candidateDaoToDomain(withdrawn, 0), nil
}

func (r *ElectionRepository) daoToDomain(e dao.Election) domain.Election {
	election := domain.Election{
		ID:                  e.ID,
		Title:               e.Title,
		ChapterID:           e.ChapterID,
		StartsAt:            e.StartsAt,
		EndsAt:              e.EndsAt,
		Status:              domain.ElectionStatus(e.Status),
		CreatedBy:           e.CreatedBy,
		ApprovedBy:          e.ApprovedBy,
		ApprovedAt:          e.ApprovedAt,
		RequireVerification: e.RequireVerification,
		PublicResults:       e.PublicResults,
		EligibleVoters:      e.EligibleVoters,
		TotalVotesCast:      e.TotalVotesCast,
		TurnoutPercentage:   e.TurnoutPercentage,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	for _, p := range e.Positions {
		position := r.positionDaoToDomain(p)
		for _, c := range p.Candidates {
			position.Candidates = append(position.Candidates, r.candidateDaoToDomain(c, p.TotalVotes))
		}
		election.Positions = append(election.Positions, position)
	}

	return election
}

func (r *ElectionRepository) positionDaoToDomain(p dao.Position) domain.Position {
	return domain.Position{
		ID:              p.ID,
		ElectionID:      p.ElectionID,
		Name:            p.Name,
		OrderIndex:      p.OrderIndex,
		TotalCandidates: p.TotalCandidates,
		TotalVotes:      p.TotalVotes,
	}
}

func (r *ElectionRepository) candidateDaoToDomain(c dao.Candidate, positionTotal int) domain.Candidate {
	return domain.Candidate{
		ID:             c.ID,
		PositionID:     c.PositionID,
		Name:           c.Name,
		Manifesto:      c.Manifesto,
		MediaURL:       c.MediaURL,
		OrderIndex:     c.OrderIndex,
		VotesCount:     c.VotesCount,
		IsWithdrawn:    c.IsWithdrawn,
		VotePercentage: domain.VotePercentage(c.VotesCount, positionTotal),
	}
}
