package domain

import (
	"math"
	"time"
)

type ElectionStatus string

const (
	ElectionPending  ElectionStatus = "pending"
	ElectionApproved ElectionStatus = "approved"
	ElectionActive   ElectionStatus = "active"
	ElectionClosed   ElectionStatus = "closed"
)

type Election struct {
	ID                  uint           `json:"id"`
	Title               string         `json:"title"`
	ChapterID           *uint          `json:"chapter_id,omitempty"` // nil means national scope
	StartsAt            time.Time      `json:"starts_at"`
	EndsAt              time.Time      `json:"ends_at"`
	Status              ElectionStatus `json:"status"`
	CreatedBy           uint           `json:"created_by"`
	ApprovedBy          *uint          `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time     `json:"approved_at,omitempty"`
	RequireVerification bool           `json:"require_verification"`
	PublicResults       bool           `json:"public_results"`
	EligibleVoters      int            `json:"eligible_voters"`
	TotalVotesCast      int            `json:"total_votes_cast"`
	TurnoutPercentage   float64        `json:"turnout_percentage"`
	Positions           []Position     `json:"positions,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (e *Election) IsNational() bool {
	return e.ChapterID == nil
}

// IsVotingOpen reports whether votes are accepted right now. Both the
// lifecycle status and the scheduled window must allow it.
func (e *Election) IsVotingOpen(now time.Time) bool {
	return e.Status == ElectionActive && !now.Before(e.StartsAt) && now.Before(e.EndsAt)
}

func (e *Election) Turnout(distinctVoters int) float64 {
	if e.EligibleVoters <= 0 {
		return 0
	}
	return round2(float64(distinctVoters) / float64(e.EligibleVoters) * 100)
}

type Position struct {
	ID              uint        `json:"id"`
	ElectionID      uint        `json:"election_id"`
	Name            string      `json:"name"`
	OrderIndex      int         `json:"order_index"`
	TotalCandidates int         `json:"total_candidates"`
	TotalVotes      int         `json:"total_votes"`
	Candidates      []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	ID             uint    `json:"id"`
	PositionID     uint    `json:"position_id"`
	Name           string  `json:"name"`
	Manifesto      string  `json:"manifesto"`
	MediaURL       string  `json:"media_url,omitempty"`
	OrderIndex     int     `json:"order_index"`
	VotesCount     int     `json:"votes_count"`
	IsWithdrawn    bool    `json:"is_withdrawn"`
	VotePercentage float64 `json:"vote_percentage"` // derived, never stored
}

// VotePercentage is the candidate's share of the position's total,
// rounded to two decimals. Zero total means zero percent, not NaN.
func VotePercentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(votes) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// VoteResult is what a successful cast returns: the fresh counters read
// back from the atomic increments, with the share recomputed from them.
type VoteResult struct {
	ElectionID     uint    `json:"election_id"`
	PositionID     uint    `json:"position_id"`
	CandidateID    uint    `json:"candidate_id"`
	CandidateVotes int     `json:"candidate_votes"`
	PositionVotes  int     `json:"position_votes"`
	VotePercentage float64 `json:"vote_percentage"`
}
