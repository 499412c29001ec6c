package domain

import (
	"context"
	"time"
)

type AuditAction string

const (
	AuditElectionCreated   AuditAction = "election.created"
	AuditElectionApproved  AuditAction = "election.approved"
	AuditElectionStarted   AuditAction = "election.started"
	AuditElectionClosed    AuditAction = "election.closed"
	AuditPositionCreated   AuditAction = "position.created"
	AuditCandidateAdded    AuditAction = "candidate.added"
	AuditCandidateUpdated  AuditAction = "candidate.updated"
	AuditCandidateWithdrew AuditAction = "candidate.withdrawn"
	AuditBallotIssued      AuditAction = "ballot.issued"
	AuditVoteCast          AuditAction = "vote.cast"
	AuditVoteRejected      AuditAction = "vote.rejected"
	AuditResultsExported   AuditAction = "results.exported"
)

// AuditEntry is append-only. Writes never fail the operation they
// describe; reads are reverse-chronological.
type AuditEntry struct {
	ID           uint        `json:"id"`
	ActorID      uint        `json:"actor_id"`
	ActorRole    string      `json:"actor_role"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   uint        `json:"resource_id"`
	ElectionID   *uint       `json:"election_id,omitempty"`
	ChapterID    *uint       `json:"chapter_id,omitempty"`
	Detail       string      `json:"detail,omitempty"`
	Origin       string      `json:"origin,omitempty"`
	UserAgent    string      `json:"user_agent,omitempty"`
	Success      bool        `json:"success"`
	CreatedAt    time.Time   `json:"created_at"`
}

// RequestMeta is where a request physically came from. It rides the
// context so audit recording can pick it up without widening every
// service signature.
type RequestMeta struct {
	Origin    string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
