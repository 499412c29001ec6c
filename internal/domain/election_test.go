package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVotePercentage(t *testing.T) {
	assert.Zero(t, VotePercentage(0, 0))
	assert.Zero(t, VotePercentage(5, 0))
	assert.InDelta(t, 100.0, VotePercentage(1, 1), 0.001)
	assert.InDelta(t, 33.33, VotePercentage(1, 3), 0.001)
	assert.InDelta(t, 66.67, VotePercentage(2, 3), 0.001)
	assert.InDelta(t, 50.0, VotePercentage(2, 4), 0.001)

	// Recomputing from the same pair is idempotent.
	assert.Equal(t, VotePercentage(7, 13), VotePercentage(7, 13))
}

func TestIsVotingOpen(t *testing.T) {
	now := time.Now()
	election := Election{
		Status:   ElectionActive,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}

	assert.True(t, election.IsVotingOpen(now))
	assert.True(t, election.IsVotingOpen(election.StartsAt))
	assert.False(t, election.IsVotingOpen(election.EndsAt))
	assert.False(t, election.IsVotingOpen(now.Add(-2*time.Hour)))
	assert.False(t, election.IsVotingOpen(now.Add(2*time.Hour)))

	election.Status = ElectionApproved
	assert.False(t, election.IsVotingOpen(now))

	election.Status = ElectionClosed
	assert.False(t, election.IsVotingOpen(now))
}

func TestTurnout(t *testing.T) {
	election := Election{EligibleVoters: 10}

	assert.InDelta(t, 30.0, election.Turnout(3), 0.001)
	assert.InDelta(t, 100.0, election.Turnout(10), 0.001)
	assert.Zero(t, election.Turnout(0))

	nobody := Election{EligibleVoters: 0}
	assert.Zero(t, nobody.Turnout(3))
}

func TestActorAuthorization(t *testing.T) {
	chapterID := uint(3)
	chapterElection := Election{ChapterID: &chapterID, PublicResults: false}
	nationalElection := Election{PublicResults: false}

	superAdmin := Actor{MemberID: 1, Role: RoleSuperAdmin}
	assert.True(t, superAdmin.CanManage(chapterElection))
	assert.True(t, superAdmin.CanManage(nationalElection))

	chapterAdmin := Actor{MemberID: 2, Role: RoleChapterAdmin, ChapterID: 3}
	assert.True(t, chapterAdmin.CanManage(chapterElection))
	assert.False(t, chapterAdmin.CanManage(nationalElection))

	otherAdmin := Actor{MemberID: 3, Role: RoleChapterAdmin, ChapterID: 99}
	assert.False(t, otherAdmin.CanManage(chapterElection))

	member := Actor{MemberID: 4, Role: RoleMember, ChapterID: 3, Verified: true}
	assert.False(t, member.CanManage(chapterElection))
	assert.True(t, member.CanViewResults(chapterElection))
	assert.True(t, member.CanViewResults(nationalElection))

	unverified := Actor{MemberID: 5, Role: RoleMember, ChapterID: 3}
	assert.False(t, unverified.CanViewResults(chapterElection))

	outsider := Actor{MemberID: 6, Role: RoleMember, ChapterID: 99, Verified: true}
	assert.False(t, outsider.CanViewResults(chapterElection))
	assert.True(t, outsider.CanViewResults(Election{ChapterID: &chapterID, PublicResults: true}))
}
