package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var errScheduleBackwards = errors.New("ends_at must be after starts_at")

type CreateElectionRequest struct {
	Title               string    `json:"title"`
	ChapterID           *uint     `json:"chapter_id"`
	StartsAt            time.Time `json:"starts_at"`
	EndsAt              time.Time `json:"ends_at"`
	RequireVerification bool      `json:"require_verification"`
	PublicResults       *bool     `json:"public_results"`
	EligibleVoters      int       `json:"eligible_voters"`
}

func (req *CreateElectionRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(3, 120)),
		validation.Field(&req.StartsAt, validation.Required),
		validation.Field(&req.EndsAt, validation.Required),
		validation.Field(&req.EligibleVoters, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if !req.EndsAt.After(req.StartsAt) {
		return errScheduleBackwards
	}

	return nil
}

type CreatePositionRequest struct {
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
}

func (req *CreatePositionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&req.OrderIndex, validation.Min(0)),
	)
}

type AddCandidateRequest struct {
	Name       string `json:"name"`
	Manifesto  string `json:"manifesto"`
	MediaURL   string `json:"media_url"`
	OrderIndex int    `json:"order_index"`
}

func (req *AddCandidateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&req.Manifesto, validation.Length(0, 5000)),
		validation.Field(&req.MediaURL, is.URL),
		validation.Field(&req.OrderIndex, validation.Min(0)),
	)
}

type UpdateCandidateRequest struct {
	Name       string `json:"name"`
	Manifesto  string `json:"manifesto"`
	MediaURL   string `json:"media_url"`
	OrderIndex int    `json:"order_index"`
}

func (req *UpdateCandidateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&req.Manifesto, validation.Length(0, 5000)),
		validation.Field(&req.MediaURL, is.URL),
		validation.Field(&req.OrderIndex, validation.Min(0)),
	)
}

type CastVoteRequest struct {
	Token       string `json:"token"`
	PositionID  uint   `json:"position_id"`
	CandidateID uint   `json:"candidate_id"`
}

func (req *CastVoteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.PositionID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.CandidateID, validation.Required, validation.Min(uint(1))),
	)
}
