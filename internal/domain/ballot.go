package domain

import "time"

// BallotPayload is the verified content of a ballot token. The token
// itself stays with the voter; the service only ever stores its hash.
type BallotPayload struct {
	VoterID    uint      `json:"voter_id"`
	ElectionID uint      `json:"election_id"`
	Nonce      string    `json:"nonce"`
	IssuedAt   time.Time `json:"issued_at"`
}

// BallotCast is the durable record of one redeemed ballot. Its unique
// keys (token hash, voter+position) are what make a vote single-use.
type BallotCast struct {
	ID          uint      `json:"id"`
	ElectionID  uint      `json:"election_id"`
	PositionID  uint      `json:"position_id"`
	CandidateID uint      `json:"candidate_id"`
	VoterID     uint      `json:"voter_id"`
	TokenHash   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
