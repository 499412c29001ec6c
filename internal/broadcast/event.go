package broadcast

import (
	"time"

	"github.com/chapterhq/election-api/internal/domain"
)

const (
	EventInitialResults = "initial-results"
	EventVoteUpdate     = "vote-update"
	EventElectionStatus = "election-status"
)

// Event is the frame every subscriber receives. Timestamps marshal as
// RFC 3339 through the standard time encoding.
type Event struct {
	Type       string      `json:"type"`
	ElectionID uint        `json:"election_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

func NewVoteEvent(result domain.VoteResult, at time.Time) Event {
	return Event{
		Type:       EventVoteUpdate,
		ElectionID: result.ElectionID,
		Timestamp:  at,
		Payload:    result,
	}
}

type statusPayload struct {
	Status domain.ElectionStatus `json:"status"`
}

func NewStatusEvent(electionID uint, status domain.ElectionStatus, at time.Time) Event {
	return Event{
		Type:       EventElectionStatus,
		ElectionID: electionID,
		Timestamp:  at,
		Payload:    statusPayload{Status: status},
	}
}

// NewSnapshotEvent carries the whole election, races nested, so a
// fresh subscriber starts from the same numbers later deltas build on.
func NewSnapshotEvent(election domain.Election, at time.Time) Event {
	return Event{
		Type:       EventInitialResults,
		ElectionID: election.ID,
		Timestamp:  at,
		Payload:    election,
	}
}
