package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/metrics"
	"github.com/chapterhq/election-api/internal/repository"
)

var (
	ErrTokenAlreadyUsed   = repository.ErrTokenAlreadyUsed
	ErrAlreadyVoted       = repository.ErrAlreadyVoted
	ErrVotingWindowClosed = errors.New("voting window is closed")
	ErrStoreTimeout       = errors.New("store operation timed out")
)

const (
	defaultStoreTimeout = 3 * time.Second
	defaultRetryBackoff = 100 * time.Millisecond
)

type VoteRepository interface {
	RecordCast(ctx context.Context, cast domain.BallotCast) (domain.BallotCast, error)
	IncrementCandidateVotes(ctx context.Context, candidateID uint) (int, error)
	IncrementPositionVotes(ctx context.Context, positionID uint) (int, error)
	IncrementElectionVotes(ctx context.Context, electionID uint) (int, error)
}

// ElectionReader is the read-only slice of the election store the
// tally path needs.
type ElectionReader interface {
	FindByID(ctx context.Context, id uint) (domain.Election, error)
	FindPosition(ctx context.Context, id uint) (domain.Position, error)
	FindCandidate(ctx context.Context, id uint) (domain.Candidate, error)
}

type BallotTokens interface {
	Issue(voterID, electionID uint) (string, error)
	Verify(token string) (domain.BallotPayload, error)
	Hash(token string) string
}

type VoteService struct {
	tokens    BallotTokens
	repo      VoteRepository
	elections ElectionReader
	publisher ResultsPublisher
	audit     AuditRecorder
	metrics   *metrics.VoteMetrics

	storeTimeout time.Duration
	retryBackoff time.Duration
	now          func() time.Time
}

func NewVoteService(tokens BallotTokens, repo VoteRepository, elections ElectionReader, publisher ResultsPublisher, audit AuditRecorder, m *metrics.VoteMetrics, storeTimeout time.Duration) *VoteService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}

	return &VoteService{
		tokens:       tokens,
		repo:         repo,
		elections:    elections,
		publisher:    publisher,
		audit:        audit,
		metrics:      m,
		storeTimeout: storeTimeout,
		retryBackoff: defaultRetryBackoff,
		now:          time.Now,
	}
}

// IssueBallot mints a token for the calling member. The election must
// already be running; eligibility follows the election's scope and its
// verification requirement.
func (s *VoteService) IssueBallot(ctx context.Context, actor domain.Actor, electionID uint) (string, error) {
	election, err := s.findElection(ctx, electionID)
	if err != nil {
		return "", err
	}

	if election.Status != domain.ElectionActive {
		return "", fmt.Errorf("%w: election is %s", ErrVotingWindowClosed, election.Status)
	}
	if election.RequireVerification && !actor.Verified {
		return "", fmt.Errorf("%w: this election requires a verified membership", ErrUnauthorized)
	}
	if !election.IsNational() && *election.ChapterID != actor.ChapterID && !actor.IsSuperAdmin() {
		return "", fmt.Errorf("%w: ballots go to members of the election's chapter", ErrUnauthorized)
	}

	token, err := s.tokens.Issue(actor.MemberID, electionID)
	if err != nil {
		return "", fmt.Errorf("s.tokens.Issue -> %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		ActorID:      actor.MemberID,
		ActorRole:    actor.Role,
		Action:       domain.AuditBallotIssued,
		ResourceType: "election",
		ResourceID:   election.ID,
		ElectionID:   &election.ID,
		ChapterID:    election.ChapterID,
		Success:      true,
	})

	return token, nil
}

// CastVote runs the redemption pipeline: verify, window check, race
// checks, consume, count, publish. Every store step is its own atomic
// statement; there is no surrounding transaction to roll back, which
// is what lets two racing requests resolve on the unique index alone.
func (s *VoteService) CastVote(ctx context.Context, rawToken string, positionID, candidateID uint) (domain.VoteResult, error) {
	started := s.now()

	payload, err := s.tokens.Verify(rawToken)
	if err != nil {
		s.reject(ctx, 0, 0, positionID, "token_invalid")
		return domain.VoteResult{}, err
	}

	election, err := s.findElection(ctx, payload.ElectionID)
	if err != nil {
		s.reject(ctx, payload.ElectionID, payload.VoterID, positionID, rejectReason(err))
		return domain.VoteResult{}, err
	}

	if !election.IsVotingOpen(s.now()) {
		s.reject(ctx, election.ID, payload.VoterID, positionID, "window_closed")
		return domain.VoteResult{}, fmt.Errorf("%w: election is %s", ErrVotingWindowClosed, election.Status)
	}

	position, candidate, err := s.loadRace(ctx, payload.ElectionID, positionID, candidateID)
	if err != nil {
		s.reject(ctx, election.ID, payload.VoterID, positionID, rejectReason(err))
		return domain.VoteResult{}, err
	}

	// Consumption point. After this insert commits the token is spent
	// and the pipeline must run to completion, caller gone or not.
	if err := s.consume(ctx, payload, position, candidate, rawToken); err != nil {
		s.reject(ctx, election.ID, payload.VoterID, positionID, rejectReason(err))
		return domain.VoteResult{}, err
	}

	detached := context.WithoutCancel(ctx)

	candidateVotes, err := s.incrementWithRetry(detached, func(c context.Context) (int, error) {
		return s.repo.IncrementCandidateVotes(c, candidate.ID)
	})
	if err != nil {
		return domain.VoteResult{}, s.counterFailure(detached, payload, position, "candidate counter", err)
	}

	positionVotes, err := s.incrementWithRetry(detached, func(c context.Context) (int, error) {
		return s.repo.IncrementPositionVotes(c, position.ID)
	})
	if err != nil {
		return domain.VoteResult{}, s.counterFailure(detached, payload, position, "position counter", err)
	}

	if _, err := s.incrementWithRetry(detached, func(c context.Context) (int, error) {
		return s.repo.IncrementElectionVotes(c, election.ID)
	}); err != nil {
		// The vote is already counted where results are read from; the
		// election-wide figure can be rebuilt from ballot_casts.
		zap.L().Warn("election counter update failed",
			zap.Uint("election_id", election.ID), zap.Error(err))
	}

	result := domain.VoteResult{
		ElectionID:     election.ID,
		PositionID:     position.ID,
		CandidateID:    candidate.ID,
		CandidateVotes: candidateVotes,
		PositionVotes:  positionVotes,
		VotePercentage: domain.VotePercentage(candidateVotes, positionVotes),
	}

	s.publisher.PublishVote(result)

	s.audit.Record(detached, domain.AuditEntry{
		ActorID:      payload.VoterID,
		ActorRole:    domain.RoleMember,
		Action:       domain.AuditVoteCast,
		ResourceType: "position",
		ResourceID:   position.ID,
		ElectionID:   &election.ID,
		ChapterID:    election.ChapterID,
		Success:      true,
	})

	if s.metrics != nil {
		label := electionLabel(election.ID)
		s.metrics.Accepted.WithLabelValues(label).Inc()
		s.metrics.CastSeconds.WithLabelValues(label).Observe(time.Since(started).Seconds())
	}

	return result, nil
}

func (s *VoteService) loadRace(ctx context.Context, electionID, positionID, candidateID uint) (domain.Position, domain.Candidate, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	position, err := s.elections.FindPosition(opCtx, positionID)
	if err != nil {
		return domain.Position{}, domain.Candidate{}, s.storeErr("s.elections.FindPosition", err)
	}
	if position.ElectionID != electionID {
		return domain.Position{}, domain.Candidate{}, fmt.Errorf("%w: position does not belong to the ballot's election", ErrValidation)
	}

	candidate, err := s.elections.FindCandidate(opCtx, candidateID)
	if err != nil {
		return domain.Position{}, domain.Candidate{}, s.storeErr("s.elections.FindCandidate", err)
	}
	if candidate.PositionID != position.ID {
		return domain.Position{}, domain.Candidate{}, fmt.Errorf("%w: candidate is not running for this position", ErrValidation)
	}
	if candidate.IsWithdrawn {
		return domain.Position{}, domain.Candidate{}, fmt.Errorf("%w: candidate has withdrawn", ErrValidation)
	}

	return position, candidate, nil
}

func (s *VoteService) consume(ctx context.Context, payload domain.BallotPayload, position domain.Position, candidate domain.Candidate, rawToken string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := s.repo.RecordCast(opCtx, domain.BallotCast{
		ElectionID:  payload.ElectionID,
		PositionID:  position.ID,
		CandidateID: candidate.ID,
		VoterID:     payload.VoterID,
		TokenHash:   s.tokens.Hash(rawToken),
	})
	if err != nil {
		return s.storeErr("s.repo.RecordCast", err)
	}

	return nil
}

func (s *VoteService) findElection(ctx context.Context, id uint) (domain.Election, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	election, err := s.elections.FindByID(opCtx, id)
	if err != nil {
		return domain.Election{}, s.storeErr("s.elections.FindByID", err)
	}

	return election, nil
}

// incrementWithRetry runs one counter update under the store timeout,
// allowing a single retry after a short pause. Only timeouts retry;
// real errors surface immediately.
func (s *VoteService) incrementWithRetry(ctx context.Context, op func(context.Context) (int, error)) (int, error) {
	count, err := s.timedIncrement(ctx, op)
	if err == nil || !errors.Is(err, ErrStoreTimeout) {
		return count, err
	}

	select {
	case <-time.After(s.retryBackoff):
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %s", ErrStoreTimeout, ctx.Err())
	}

	return s.timedIncrement(ctx, op)
}

func (s *VoteService) timedIncrement(ctx context.Context, op func(context.Context) (int, error)) (int, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	count, err := op(opCtx)
	if err != nil {
		return 0, s.storeErr("increment", err)
	}

	return count, nil
}

func (s *VoteService) counterFailure(ctx context.Context, payload domain.BallotPayload, position domain.Position, which string, err error) error {
	zap.L().Error("counter update failed after ballot consumption",
		zap.String("counter", which),
		zap.Uint("election_id", payload.ElectionID),
		zap.Uint("position_id", position.ID),
		zap.Error(err))

	s.audit.Record(ctx, domain.AuditEntry{
		ActorID:      payload.VoterID,
		ActorRole:    domain.RoleMember,
		Action:       domain.AuditVoteCast,
		ResourceType: "position",
		ResourceID:   position.ID,
		ElectionID:   &payload.ElectionID,
		Detail:       which + " update failed",
		Success:      false,
	})

	return err
}

// storeErr folds context deadlines into the retryable timeout sentinel
// and wraps everything else in the usual chain.
func (s *VoteService) storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrStoreTimeout, op)
	}

	return fmt.Errorf("%s -> %w", op, err)
}

func (s *VoteService) reject(ctx context.Context, electionID, voterID, positionID uint, reason string) {
	if s.metrics != nil {
		s.metrics.Rejected.WithLabelValues(electionLabel(electionID), reason).Inc()
	}

	entry := domain.AuditEntry{
		ActorID:      voterID,
		ActorRole:    domain.RoleMember,
		Action:       domain.AuditVoteRejected,
		ResourceType: "position",
		ResourceID:   positionID,
		Detail:       reason,
		Success:      false,
	}
	if electionID != 0 {
		entry.ElectionID = &electionID
	}
	s.audit.Record(ctx, entry)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "token_already_used"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrVotingWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStoreTimeout):
		return "store_timeout"
	case errors.Is(err, ErrElectionNotFound),
		errors.Is(err, ErrPositionNotFound),
		errors.Is(err, ErrCandidateNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func electionLabel(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
