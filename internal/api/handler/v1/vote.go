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

type VoteService interface {
	IssueBallot(ctx context.Context, actor domain.Actor, electionID uint) (string, error)
	CastVote(ctx context.Context, token string, positionID, candidateID uint) (domain.VoteResult, error)
}

type VoteHandler struct {
	svc VoteService
}

func NewVoteHandler(svc VoteService) *VoteHandler {
	return &VoteHandler{
		svc: svc,
	}
}

// HandleIssueBallot godoc
// @Summary      Issue a ballot token
// @Description  Mints a single-use ballot token binding the caller to an active election
// @Tags         votes
// @Produce      json
// @Param        electionID  path      int  true  "Election ID"
// @Success      201  {object}  response.BallotResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/ballot [post]
// @Security     BearerAuth
func (h *VoteHandler) HandleIssueBallot(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	electionID, respErr := parseIDParam(ctx, "electionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	token, err := h.svc.IssueBallot(ctx.Request.Context(), actor, electionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
		case errors.Is(err, service.ErrVotingWindowClosed):
			response.RenderErr(ctx, response.ErrVotingWindowClosed(err))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrStoreTimeout):
			response.RenderErr(ctx, response.ErrStoreTimeout(err))
		default:
			err = fmt.Errorf("HandleIssueBallot -> h.svc.IssueBallot -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.BallotResponse{Token: token})
}

// HandleCastVote godoc
// @Summary      Cast a vote
// @Description  Redeems a ballot token for one candidate in one position and returns the fresh tally
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        input  body      request.CastVoteRequest  true  "Ballot token and choice"
// @Success      200  {object}  domain.VoteResult
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /votes [post]
func (h *VoteHandler) HandleCastVote(ctx *gin.Context) {
	var input request.CastVoteRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.CastVote(ctx.Request.Context(), input.Token, input.PositionID, input.CandidateID)
	if err != nil {
		// The taxonomy matters here: a voter told "already used" when the
		// token was merely expired would draw exactly the wrong conclusion.
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			response.RenderErr(ctx, response.ErrTokenInvalid(err))
		case errors.Is(err, service.ErrTokenAlreadyUsed), errors.Is(err, service.ErrAlreadyVoted):
			response.RenderErr(ctx, response.ErrTokenAlreadyUsed(err))
		case errors.Is(err, service.ErrVotingWindowClosed):
			response.RenderErr(ctx, response.ErrVotingWindowClosed(err))
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "token", "ballot"))
		case errors.Is(err, service.ErrPositionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("position", "positionID", input.PositionID))
		case errors.Is(err, service.ErrCandidateNotFound):
			response.RenderErr(ctx, response.ErrNotFound("candidate", "candidateID", input.CandidateID))
		case errors.Is(err, service.ErrStoreTimeout):
			response.RenderErr(ctx, response.ErrStoreTimeout(err))
		default:
			err = fmt.Errorf("HandleCastVote -> h.svc.CastVote -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, result)
}
