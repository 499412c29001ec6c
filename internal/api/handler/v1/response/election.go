package response

import "github.com/chapterhq/election-api/internal/domain"

type BallotResponse struct {
	Token string `json:"token"`
}

type ListElectionsResponse struct {
	Elections []domain.Election `json:"elections"`
}

type AuditEntriesResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
}
