package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository"
)

var (
	ErrElectionNotFound  = repository.ErrElectionNotFound
	ErrPositionNotFound  = repository.ErrPositionNotFound
	ErrCandidateNotFound = repository.ErrCandidateNotFound

	ErrUnauthorized   = errors.New("actor is not allowed to perform this action")
	ErrValidation     = errors.New("validation failed")
	ErrElectionClosed = errors.New("election is closed")
)

// InvalidTransitionError reports a lifecycle move the current status
// does not permit. The status is re-read after the compare-and-swap
// misses, so the message names where the election actually is.
type InvalidTransitionError struct {
	ElectionID uint
	Current    domain.ElectionStatus
	Target     domain.ElectionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("election %d is %s, cannot become %s", e.ElectionID, e.Current, e.Target)
}

type ElectionRepository interface {
	Create(ctx context.Context, election domain.Election) (domain.Election, error)
	FindByID(ctx context.Context, id uint) (domain.Election, error)
	FindByIDWithRaces(ctx context.Context, id uint, includeWithdrawn bool) (domain.Election, error)
	List(ctx context.Context, filter repository.ElectionFilter) ([]domain.Election, error)
	Transition(ctx context.Context, id uint, from, to domain.ElectionStatus) (bool, error)
	Approve(ctx context.Context, id uint, approverID uint, at time.Time) (bool, error)
	SetTurnout(ctx context.Context, id uint, turnout float64) error
	CreatePosition(ctx context.Context, position domain.Position) (domain.Position, error)
	FindPosition(ctx context.Context, id uint) (domain.Position, error)
	CreateCandidate(ctx context.Context, candidate domain.Candidate) (domain.Candidate, error)
	FindCandidate(ctx context.Context, id uint) (domain.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate domain.Candidate) (domain.Candidate, error)
	WithdrawCandidate(ctx context.Context, id uint) (domain.Candidate, error)
}

// TurnoutCounter is the slice of the vote store the lifecycle needs at
// close time.
type TurnoutCounter interface {
	CountDistinctVoters(ctx context.Context, electionID uint) (int, error)
}

// ResultsPublisher fans events out to live subscribers. Implementations
// must never block; a lost event is acceptable, a stalled caller is not.
type ResultsPublisher interface {
	PublishVote(result domain.VoteResult)
	PublishStatus(electionID uint, status domain.ElectionStatus)
}

// AuditRecorder appends one trail entry. It has no error return on
// purpose; recording failures must not fail the recorded operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

type ElectionService struct {
	repo      ElectionRepository
	turnout   TurnoutCounter
	publisher ResultsPublisher
	audit     AuditRecorder
	now       func() time.Time
}

func NewElectionService(repo ElectionRepository, turnout TurnoutCounter, publisher ResultsPublisher, audit AuditRecorder) *ElectionService {
	return &ElectionService{
		repo:      repo,
		turnout:   turnout,
		publisher: publisher,
		audit:     audit,
		now:       time.Now,
	}
}

func (s *ElectionService) CreateElection(ctx context.Context, actor domain.Actor, election domain.Election) (domain.Election, error) {
	switch actor.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleChapterAdmin:
		if election.ChapterID == nil || *election.ChapterID != actor.ChapterID {
			return domain.Election{}, fmt.Errorf("%w: chapter admins create elections for their own chapter", ErrUnauthorized)
		}
	default:
		return domain.Election{}, ErrUnauthorized
	}

	if !election.EndsAt.After(election.StartsAt) {
		return domain.Election{}, fmt.Errorf("%w: ends_at must be after starts_at", ErrValidation)
	}
	if election.EligibleVoters < 0 {
		return domain.Election{}, fmt.Errorf("%w: eligible_voters cannot be negative", ErrValidation)
	}

	election.CreatedBy = actor.MemberID
	election.Status = domain.ElectionPending

	created, err := s.repo.Create(ctx, election)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.audit.Record(ctx, s.electionAudit(actor, domain.AuditElectionCreated, created, true))

	return created, nil
}

// Approve moves pending -> approved. Board approval is the only step
// reserved to super admins regardless of scope.
func (s *ElectionService) Approve(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error) {
	if !actor.IsSuperAdmin() {
		return domain.Election{}, fmt.Errorf("%w: approval requires a super admin", ErrUnauthorized)
	}

	ok, err := s.repo.Approve(ctx, electionID, actor.MemberID, s.now())
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.Approve -> %w", err)
	}
	if !ok {
		return domain.Election{}, s.transitionFailure(ctx, electionID, domain.ElectionApproved)
	}

	return s.afterTransition(ctx, actor, electionID, domain.AuditElectionApproved)
}

func (s *ElectionService) Start(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error) {
	election, err := s.repo.FindByID(ctx, electionID)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !actor.CanManage(election) {
		return domain.Election{}, ErrUnauthorized
	}

	ok, err := s.repo.Transition(ctx, electionID, domain.ElectionApproved, domain.ElectionActive)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.Transition -> %w", err)
	}
	if !ok {
		return domain.Election{}, s.transitionFailure(ctx, electionID, domain.ElectionActive)
	}

	return s.afterTransition(ctx, actor, electionID, domain.AuditElectionStarted)
}

// Close ends voting, then freezes the final turnout. Votes landing
// between the count and the swap cannot exist: the swap happens first,
// and a closed election admits no inserts.
func (s *ElectionService) Close(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error) {
	election, err := s.repo.FindByID(ctx, electionID)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !actor.CanManage(election) {
		return domain.Election{}, ErrUnauthorized
	}

	ok, err := s.repo.Transition(ctx, electionID, domain.ElectionActive, domain.ElectionClosed)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.Transition -> %w", err)
	}
	if !ok {
		return domain.Election{}, s.transitionFailure(ctx, electionID, domain.ElectionClosed)
	}

	voters, err := s.turnout.CountDistinctVoters(ctx, electionID)
	if err != nil {
		zap.L().Warn("turnout count failed, leaving zero",
			zap.Uint("election_id", electionID), zap.Error(err))
	} else if err := s.repo.SetTurnout(ctx, electionID, election.Turnout(voters)); err != nil {
		zap.L().Warn("turnout freeze failed",
			zap.Uint("election_id", electionID), zap.Error(err))
	}

	return s.afterTransition(ctx, actor, electionID, domain.AuditElectionClosed)
}

// Get returns the election with its races nested. Tallies are redacted
// for actors the results are not shared with yet; the candidate list
// itself stays visible so members can still fill in a ballot.
func (s *ElectionService) Get(ctx context.Context, actor domain.Actor, electionID uint, includeWithdrawn bool) (domain.Election, error) {
	election, err := s.repo.FindByIDWithRaces(ctx, electionID, includeWithdrawn)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByIDWithRaces -> %w", err)
	}

	if !actor.CanViewResults(election) {
		redactTallies(&election)
	}

	return election, nil
}

// LiveSnapshot is the subscription gate for the results stream. Unlike
// Get it rejects rather than redacts: a subscriber with no standing on
// a non-public election never joins the room.
func (s *ElectionService) LiveSnapshot(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error) {
	election, err := s.repo.FindByIDWithRaces(ctx, electionID, false)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByIDWithRaces -> %w", err)
	}

	if !actor.CanViewResults(election) {
		return domain.Election{}, fmt.Errorf("%w: results of this election are not public", ErrUnauthorized)
	}

	return election, nil
}

func (s *ElectionService) List(ctx context.Context, actor domain.Actor, filter repository.ElectionFilter) ([]domain.Election, error) {
	elections, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	for i := range elections {
		if !actor.CanViewResults(elections[i]) {
			redactTallies(&elections[i])
		}
	}

	return elections, nil
}

func (s *ElectionService) CreatePosition(ctx context.Context, actor domain.Actor, position domain.Position) (domain.Position, error) {
	election, err := s.repo.FindByID(ctx, position.ElectionID)
	if err != nil {
		return domain.Position{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !actor.CanManage(election) {
		return domain.Position{}, ErrUnauthorized
	}
	if election.Status == domain.ElectionClosed {
		return domain.Position{}, ErrElectionClosed
	}

	created, err := s.repo.CreatePosition(ctx, position)
	if err != nil {
		return domain.Position{}, fmt.Errorf("s.repo.CreatePosition -> %w", err)
	}

	entry := s.electionAudit(actor, domain.AuditPositionCreated, election, true)
	entry.ResourceType = "position"
	entry.ResourceID = created.ID
	s.audit.Record(ctx, entry)

	return created, nil
}

func (s *ElectionService) AddCandidate(ctx context.Context, actor domain.Actor, candidate domain.Candidate) (domain.Candidate, error) {
	election, err := s.electionForPosition(ctx, candidate.PositionID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !actor.CanManage(election) {
		return domain.Candidate{}, ErrUnauthorized
	}
	if election.Status == domain.ElectionClosed {
		return domain.Candidate{}, ErrElectionClosed
	}

	created, err := s.repo.CreateCandidate(ctx, candidate)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("s.repo.CreateCandidate -> %w", err)
	}

	entry := s.electionAudit(actor, domain.AuditCandidateAdded, election, true)
	entry.ResourceType = "candidate"
	entry.ResourceID = created.ID
	s.audit.Record(ctx, entry)

	return created, nil
}

func (s *ElectionService) UpdateCandidate(ctx context.Context, actor domain.Actor, candidate domain.Candidate) (domain.Candidate, error) {
	current, err := s.repo.FindCandidate(ctx, candidate.ID)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("s.repo.FindCandidate -> %w", err)
	}

	election, err := s.electionForPosition(ctx, current.PositionID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !actor.CanManage(election) {
		return domain.Candidate{}, ErrUnauthorized
	}
	if election.Status == domain.ElectionClosed {
		return domain.Candidate{}, ErrElectionClosed
	}

	updated, err := s.repo.UpdateCandidate(ctx, candidate)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("s.repo.UpdateCandidate -> %w", err)
	}

	entry := s.electionAudit(actor, domain.AuditCandidateUpdated, election, true)
	entry.ResourceType = "candidate"
	entry.ResourceID = updated.ID
	s.audit.Record(ctx, entry)

	return updated, nil
}

// WithdrawCandidate hides the candidate from default listings. Votes
// already cast keep counting toward position totals; withdrawing again
// is a no-op, not an error.
func (s *ElectionService) WithdrawCandidate(ctx context.Context, actor domain.Actor, candidateID uint) (domain.Candidate, error) {
	current, err := s.repo.FindCandidate(ctx, candidateID)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("s.repo.FindCandidate -> %w", err)
	}

	election, err := s.electionForPosition(ctx, current.PositionID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if !actor.CanManage(election) {
		return domain.Candidate{}, ErrUnauthorized
	}
	if election.Status == domain.ElectionClosed {
		return domain.Candidate{}, ErrElectionClosed
	}

	withdrawn, err := s.repo.WithdrawCandidate(ctx, candidateID)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("s.repo.WithdrawCandidate -> %w", err)
	}

	entry := s.electionAudit(actor, domain.AuditCandidateWithdrew, election, true)
	entry.ResourceType = "candidate"
	entry.ResourceID = withdrawn.ID
	s.audit.Record(ctx, entry)

	return withdrawn, nil
}

// Export returns the final results of a closed election, withdrawn
// candidates included: their votes stayed in the totals, so the export
// has to show where those votes went.
func (s *ElectionService) Export(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error) {
	election, err := s.repo.FindByIDWithRaces(ctx, electionID, true)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByIDWithRaces -> %w", err)
	}
	if election.Status != domain.ElectionClosed {
		return domain.Election{}, fmt.Errorf("%w: results export requires a closed election", ErrValidation)
	}
	if !actor.CanViewResults(election) {
		return domain.Election{}, ErrUnauthorized
	}

	entry := s.electionAudit(actor, domain.AuditResultsExported, election, true)
	s.audit.Record(ctx, entry)

	return election, nil
}

func (s *ElectionService) electionForPosition(ctx context.Context, positionID uint) (domain.Election, error) {
	position, err := s.repo.FindPosition(ctx, positionID)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindPosition -> %w", err)
	}

	election, err := s.repo.FindByID(ctx, position.ElectionID)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return election, nil
}

// transitionFailure re-reads the row to tell "not found" apart from
// "wrong status", and to name the status the election is actually in.
func (s *ElectionService) transitionFailure(ctx context.Context, electionID uint, target domain.ElectionStatus) error {
	election, err := s.repo.FindByID(ctx, electionID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return &InvalidTransitionError{
		ElectionID: electionID,
		Current:    election.Status,
		Target:     target,
	}
}

func (s *ElectionService) afterTransition(ctx context.Context, actor domain.Actor, electionID uint, action domain.AuditAction) (domain.Election, error) {
	election, err := s.repo.FindByID(ctx, electionID)
	if err != nil {
		return domain.Election{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.publisher.PublishStatus(election.ID, election.Status)
	s.audit.Record(ctx, s.electionAudit(actor, action, election, true))

	return election, nil
}

func (s *ElectionService) electionAudit(actor domain.Actor, action domain.AuditAction, election domain.Election, success bool) domain.AuditEntry {
	electionID := election.ID

	return domain.AuditEntry{
		ActorID:      actor.MemberID,
		ActorRole:    actor.Role,
		Action:       action,
		ResourceType: "election",
		ResourceID:   election.ID,
		ElectionID:   &electionID,
		ChapterID:    election.ChapterID,
		Success:      success,
	}
}

func redactTallies(election *domain.Election) {
	election.TotalVotesCast = 0
	election.TurnoutPercentage = 0
	for i := range election.Positions {
		election.Positions[i].TotalVotes = 0
		for j := range election.Positions[i].Candidates {
			election.Positions[i].Candidates[j].VotesCount = 0
			election.Positions[i].Candidates[j].VotePercentage = 0
		}
	}
}
