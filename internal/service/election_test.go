package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository"
)

// memElectionRepo mirrors the store's contract: status transitions are
// compare-and-swaps that report a miss instead of writing blindly.
type memElectionRepo struct {
	mu         sync.Mutex
	nextID     uint
	elections  map[uint]domain.Election
	positions  map[uint]domain.Position
	candidates map[uint]domain.Candidate
}

func newMemElectionRepo() *memElectionRepo {
	return &memElectionRepo{
		nextID:     1,
		elections:  make(map[uint]domain.Election),
		positions:  make(map[uint]domain.Position),
		candidates: make(map[uint]domain.Candidate),
	}
}

func (r *memElectionRepo) Create(_ context.Context, election domain.Election) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election.ID = r.nextID
	r.nextID++
	election.Status = domain.ElectionPending
	r.elections[election.ID] = election

	return election, nil
}

func (r *memElectionRepo) FindByID(_ context.Context, id uint) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return domain.Election{}, ErrElectionNotFound
	}
	return election, nil
}

func (r *memElectionRepo) FindByIDWithRaces(_ context.Context, id uint, includeWithdrawn bool) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return domain.Election{}, ErrElectionNotFound
	}

	for _, position := range r.positions {
		if position.ElectionID != id {
			continue
		}
		for _, candidate := range r.candidates {
			if candidate.PositionID != position.ID {
				continue
			}
			if candidate.IsWithdrawn && !includeWithdrawn {
				continue
			}
			position.Candidates = append(position.Candidates, candidate)
		}
		election.Positions = append(election.Positions, position)
	}

	return election, nil
}

func (r *memElectionRepo) List(_ context.Context, _ repository.ElectionFilter) ([]domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elections := make([]domain.Election, 0, len(r.elections))
	for _, election := range r.elections {
		elections = append(elections, election)
	}
	return elections, nil
}

func (r *memElectionRepo) Transition(_ context.Context, id uint, from, to domain.ElectionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok || election.Status != from {
		return false, nil
	}

	election.Status = to
	r.elections[id] = election
	return true, nil
}

func (r *memElectionRepo) Approve(_ context.Context, id uint, approverID uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok || election.Status != domain.ElectionPending {
		return false, nil
	}

	election.Status = domain.ElectionApproved
	election.ApprovedBy = &approverID
	election.ApprovedAt = &at
	r.elections[id] = election
	return true, nil
}

func (r *memElectionRepo) SetTurnout(_ context.Context, id uint, turnout float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	election, ok := r.elections[id]
	if !ok {
		return ErrElectionNotFound
	}

	election.TurnoutPercentage = turnout
	r.elections[id] = election
	return nil
}

func (r *memElectionRepo) CreatePosition(_ context.Context, position domain.Position) (domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	position.ID = r.nextID
	r.nextID++
	r.positions[position.ID] = position
	return position, nil
}

func (r *memElectionRepo) FindPosition(_ context.Context, id uint) (domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	position, ok := r.positions[id]
	if !ok {
		return domain.Position{}, ErrPositionNotFound
	}
	return position, nil
}

func (r *memElectionRepo) CreateCandidate(_ context.Context, candidate domain.Candidate) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate.ID = r.nextID
	r.nextID++
	r.candidates[candidate.ID] = candidate

	position := r.positions[candidate.PositionID]
	position.TotalCandidates++
	r.positions[candidate.PositionID] = position

	return candidate, nil
}

func (r *memElectionRepo) FindCandidate(_ context.Context, id uint) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate, ok := r.candidates[id]
	if !ok {
		return domain.Candidate{}, ErrCandidateNotFound
	}
	return candidate, nil
}

func (r *memElectionRepo) UpdateCandidate(_ context.Context, candidate domain.Candidate) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.candidates[candidate.ID]
	if !ok {
		return domain.Candidate{}, ErrCandidateNotFound
	}

	current.Name = candidate.Name
	current.Manifesto = candidate.Manifesto
	current.MediaURL = candidate.MediaURL
	current.OrderIndex = candidate.OrderIndex
	r.candidates[candidate.ID] = current
	return current, nil
}

func (r *memElectionRepo) WithdrawCandidate(_ context.Context, id uint) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate, ok := r.candidates[id]
	if !ok {
		return domain.Candidate{}, ErrCandidateNotFound
	}

	candidate.IsWithdrawn = true
	r.candidates[id] = candidate
	return candidate, nil
}

type fixedTurnout struct {
	voters int
}

func (f fixedTurnout) CountDistinctVoters(context.Context, uint) (int, error) {
	return f.voters, nil
}

var (
	superAdmin   = domain.Actor{MemberID: 1, Role: domain.RoleSuperAdmin, Verified: true}
	chapterAdmin = domain.Actor{MemberID: 2, Role: domain.RoleChapterAdmin, ChapterID: 3, Verified: true}
	chapterThree = uint(3)
)

type electionFixture struct {
	svc       *ElectionService
	repo      *memElectionRepo
	publisher *capturePublisher
	audit     *captureAudit
}

func newElectionFixture(t *testing.T, voters int) *electionFixture {
	t.Helper()

	repo := newMemElectionRepo()
	publisher := &capturePublisher{}
	audit := &captureAudit{}

	return &electionFixture{
		svc:       NewElectionService(repo, fixedTurnout{voters: voters}, publisher, audit),
		repo:      repo,
		publisher: publisher,
		audit:     audit,
	}
}

func pendingElection() domain.Election {
	return domain.Election{
		Title:          "Chapter Board 2026",
		ChapterID:      &chapterThree,
		StartsAt:       time.Now().Add(-time.Hour),
		EndsAt:         time.Now().Add(14 * 24 * time.Hour),
		PublicResults:  true,
		EligibleVoters: 10,
	}
}

func TestLifecycle_FullPath(t *testing.T) {
	f := newElectionFixture(t, 3)

	created, err := f.svc.CreateElection(context.Background(), chapterAdmin, pendingElection())
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionPending, created.Status)
	assert.Nil(t, created.ApprovedAt)

	approved, err := f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, superAdmin.MemberID, *approved.ApprovedBy)

	started, err := f.svc.Start(context.Background(), chapterAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionActive, started.Status)

	closed, err := f.svc.Close(context.Background(), chapterAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionClosed, closed.Status)
	assert.InDelta(t, 30.0, closed.TurnoutPercentage, 0.001)

	assert.Equal(t, []domain.ElectionStatus{
		domain.ElectionApproved,
		domain.ElectionActive,
		domain.ElectionClosed,
	}, f.publisher.statuses)
}

func TestLifecycle_NoSkippingStates(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)

	var transitionErr *InvalidTransitionError

	_, err = f.svc.Start(context.Background(), superAdmin, created.ID)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.ElectionPending, transitionErr.Current)
	assert.Equal(t, domain.ElectionActive, transitionErr.Target)

	_, err = f.svc.Close(context.Background(), superAdmin, created.ID)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.ElectionPending, transitionErr.Current)
}

func TestLifecycle_StatusNeverRegresses(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Start(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Close(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)

	var transitionErr *InvalidTransitionError

	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.ElectionClosed, transitionErr.Current)

	_, err = f.svc.Start(context.Background(), superAdmin, created.ID)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.ElectionClosed, transitionErr.Current)

	final, err := f.svc.Get(context.Background(), superAdmin, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionClosed, final.Status)
}

// Racing Start calls resolve on the compare-and-swap: one caller moves
// the election, the rest learn it is already active.
func TestStart_ConcurrentOneWinner(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)

	const callers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.svc.Start(context.Background(), superAdmin, created.ID)
			if err == nil {
				wins.Add(1)
				return
			}

			var transitionErr *InvalidTransitionError
			if assert.ErrorAs(t, err, &transitionErr) {
				assert.Equal(t, domain.ElectionActive, transitionErr.Current)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestApprove_RequiresSuperAdmin(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), chapterAdmin, pendingElection())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), chapterAdmin, created.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStart_ScopeAuthorization(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), chapterAdmin, pendingElection())
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)

	otherChapterAdmin := domain.Actor{MemberID: 5, Role: domain.RoleChapterAdmin, ChapterID: 99}
	_, err = f.svc.Start(context.Background(), otherChapterAdmin, created.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	member := domain.Actor{MemberID: 6, Role: domain.RoleMember, ChapterID: 3}
	_, err = f.svc.Start(context.Background(), member, created.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateElection_Validation(t *testing.T) {
	f := newElectionFixture(t, 0)

	backwards := pendingElection()
	backwards.StartsAt = time.Now().Add(time.Hour)
	backwards.EndsAt = time.Now()

	_, err := f.svc.CreateElection(context.Background(), superAdmin, backwards)
	assert.ErrorIs(t, err, ErrValidation)

	wrongChapter := pendingElection()
	other := uint(99)
	wrongChapter.ChapterID = &other
	_, err = f.svc.CreateElection(context.Background(), chapterAdmin, wrongChapter)
	assert.ErrorIs(t, err, ErrUnauthorized)

	national := pendingElection()
	national.ChapterID = nil
	_, err = f.svc.CreateElection(context.Background(), chapterAdmin, national)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRaces_FrozenAfterClose(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)

	position, err := f.svc.CreatePosition(context.Background(), superAdmin, domain.Position{
		ElectionID: created.ID,
		Name:       "President",
	})
	require.NoError(t, err)

	candidate, err := f.svc.AddCandidate(context.Background(), superAdmin, domain.Candidate{
		PositionID: position.ID,
		Name:       "Alice",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Start(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Close(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)

	_, err = f.svc.CreatePosition(context.Background(), superAdmin, domain.Position{
		ElectionID: created.ID,
		Name:       "Treasurer",
	})
	assert.ErrorIs(t, err, ErrElectionClosed)

	_, err = f.svc.AddCandidate(context.Background(), superAdmin, domain.Candidate{
		PositionID: position.ID,
		Name:       "Bob",
	})
	assert.ErrorIs(t, err, ErrElectionClosed)

	candidate.Name = "Alice Updated"
	_, err = f.svc.UpdateCandidate(context.Background(), superAdmin, candidate)
	assert.ErrorIs(t, err, ErrElectionClosed)

	_, err = f.svc.WithdrawCandidate(context.Background(), superAdmin, candidate.ID)
	assert.ErrorIs(t, err, ErrElectionClosed)
}

func TestWithdrawCandidate_Idempotent(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)
	position, err := f.svc.CreatePosition(context.Background(), superAdmin, domain.Position{
		ElectionID: created.ID,
		Name:       "President",
	})
	require.NoError(t, err)
	candidate, err := f.svc.AddCandidate(context.Background(), superAdmin, domain.Candidate{
		PositionID: position.ID,
		Name:       "Alice",
	})
	require.NoError(t, err)

	first, err := f.svc.WithdrawCandidate(context.Background(), superAdmin, candidate.ID)
	require.NoError(t, err)
	assert.True(t, first.IsWithdrawn)

	second, err := f.svc.WithdrawCandidate(context.Background(), superAdmin, candidate.ID)
	require.NoError(t, err)
	assert.True(t, second.IsWithdrawn)
}

func TestGet_RedactsTalliesForOutsiders(t *testing.T) {
	f := newElectionFixture(t, 0)

	private := pendingElection()
	private.PublicResults = false
	created, err := f.svc.CreateElection(context.Background(), superAdmin, private)
	require.NoError(t, err)

	election := f.repo.elections[created.ID]
	election.TotalVotesCast = 5
	f.repo.elections[created.ID] = election

	outsider := domain.Actor{MemberID: 9, Role: domain.RoleMember, ChapterID: 99, Verified: true}
	fetched, err := f.svc.Get(context.Background(), outsider, created.ID, false)
	require.NoError(t, err)
	assert.Zero(t, fetched.TotalVotesCast)

	insider := domain.Actor{MemberID: 10, Role: domain.RoleMember, ChapterID: 3, Verified: true}
	fetched, err = f.svc.Get(context.Background(), insider, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 5, fetched.TotalVotesCast)
}

func TestLiveSnapshot_AuthorizationGate(t *testing.T) {
	f := newElectionFixture(t, 0)

	private := pendingElection()
	private.PublicResults = false
	created, err := f.svc.CreateElection(context.Background(), superAdmin, private)
	require.NoError(t, err)

	outsider := domain.Actor{MemberID: 9, Role: domain.RoleMember, ChapterID: 99, Verified: true}
	_, err = f.svc.LiveSnapshot(context.Background(), outsider, created.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	unverified := domain.Actor{MemberID: 10, Role: domain.RoleMember, ChapterID: 3}
	_, err = f.svc.LiveSnapshot(context.Background(), unverified, created.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	insider := domain.Actor{MemberID: 11, Role: domain.RoleMember, ChapterID: 3, Verified: true}
	snapshot, err := f.svc.LiveSnapshot(context.Background(), insider, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, snapshot.ID)

	_, err = f.svc.LiveSnapshot(context.Background(), insider, 404)
	assert.ErrorIs(t, err, ErrElectionNotFound)
}

func TestExport_ClosedElectionsOnly(t *testing.T) {
	f := newElectionFixture(t, 0)

	created, err := f.svc.CreateElection(context.Background(), superAdmin, pendingElection())
	require.NoError(t, err)

	_, err = f.svc.Export(context.Background(), superAdmin, created.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Approve(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Start(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Close(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)

	exported, err := f.svc.Export(context.Background(), superAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElectionClosed, exported.Status)

	entries := f.audit.byAction(domain.AuditResultsExported)
	assert.Len(t, entries, 1)
}
