package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/api/handler/v1/request"
	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/service"
)

type CandidateService interface {
	AddCandidate(ctx context.Context, actor domain.Actor, candidate domain.Candidate) (domain.Candidate, error)
	UpdateCandidate(ctx context.Context, actor domain.Actor, candidate domain.Candidate) (domain.Candidate, error)
	WithdrawCandidate(ctx context.Context, actor domain.Actor, candidateID uint) (domain.Candidate, error)
}

type CandidateHandler struct {
	svc CandidateService
}

func NewCandidateHandler(svc CandidateService) *CandidateHandler {
	return &CandidateHandler{
		svc: svc,
	}
}

// HandleAddCandidate godoc
// @Summary      Add a candidate
// @Description  Adds a candidate to a position while the owning election is not closed
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        positionID  path      int                         true  "Position ID"
// @Param        input       body      request.AddCandidateRequest  true  "Candidate details"
// @Success      201  {object}  domain.Candidate
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /positions/{positionID}/candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) HandleAddCandidate(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	positionID, respErr := parseIDParam(ctx, "positionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.AddCandidateRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	candidate := domain.Candidate{
		PositionID: positionID,
		Name:       input.Name,
		Manifesto:  input.Manifesto,
		MediaURL:   input.MediaURL,
		OrderIndex: input.OrderIndex,
	}

	created, err := h.svc.AddCandidate(ctx.Request.Context(), actor, candidate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPositionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("position", "positionID", positionID))
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "positionID", positionID))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrElectionClosed):
			response.RenderErr(ctx, response.ErrVotingWindowClosed(err))
		default:
			err = fmt.Errorf("HandleAddCandidate -> h.svc.AddCandidate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateCandidate godoc
// @Summary      Update a candidate
// @Description  Updates a candidate's name, manifesto, media or ordering
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        candidateID  path      int                            true  "Candidate ID"
// @Param        input        body      request.UpdateCandidateRequest  true  "New candidate details"
// @Success      200  {object}  domain.Candidate
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /candidates/{candidateID} [patch]
// @Security     BearerAuth
func (h *CandidateHandler) HandleUpdateCandidate(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	candidateID, respErr := parseIDParam(ctx, "candidateID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.UpdateCandidateRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	candidate := domain.Candidate{
		ID:         candidateID,
		Name:       input.Name,
		Manifesto:  input.Manifesto,
		MediaURL:   input.MediaURL,
		OrderIndex: input.OrderIndex,
	}

	updated, err := h.svc.UpdateCandidate(ctx.Request.Context(), actor, candidate)
	if err != nil {
		h.renderCandidateErr(ctx, "HandleUpdateCandidate", candidateID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleWithdrawCandidate godoc
// @Summary      Withdraw a candidate
// @Description  Marks a candidate as withdrawn. The candidate stays visible for audit but receives no further votes. Idempotent.
// @Tags         candidates
// @Produce      json
// @Param        candidateID  path      int  true  "Candidate ID"
// @Success      200  {object}  domain.Candidate
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /candidates/{candidateID}/withdraw [patch]
// @Security     BearerAuth
func (h *CandidateHandler) HandleWithdrawCandidate(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	candidateID, respErr := parseIDParam(ctx, "candidateID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	withdrawn, err := h.svc.WithdrawCandidate(ctx.Request.Context(), actor, candidateID)
	if err != nil {
		h.renderCandidateErr(ctx, "HandleWithdrawCandidate", candidateID, err)
		return
	}

	ctx.JSON(http.StatusOK, withdrawn)
}

func (h *CandidateHandler) renderCandidateErr(ctx *gin.Context, name string, candidateID uint, err error) {
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		response.RenderErr(ctx, response.ErrNotFound("candidate", "candidateID", candidateID))
	case errors.Is(err, service.ErrPositionNotFound), errors.Is(err, service.ErrElectionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("candidate", "candidateID", candidateID))
	case errors.Is(err, service.ErrUnauthorized):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrElectionClosed):
		response.RenderErr(ctx, response.ErrVotingWindowClosed(err))
	default:
		err = fmt.Errorf("%v -> %w", name, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
