package v1

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/api/handler/v1/request"
	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository"
	"github.com/chapterhq/election-api/internal/service"
)

type ElectionService interface {
	CreateElection(ctx context.Context, actor domain.Actor, election domain.Election) (domain.Election, error)
	Approve(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error)
	Start(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error)
	Close(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error)
	Get(ctx context.Context, actor domain.Actor, electionID uint, includeWithdrawn bool) (domain.Election, error)
	List(ctx context.Context, actor domain.Actor, filter repository.ElectionFilter) ([]domain.Election, error)
	CreatePosition(ctx context.Context, actor domain.Actor, position domain.Position) (domain.Position, error)
	Export(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error)
}

type ElectionHandler struct {
	svc ElectionService
}

func NewElectionHandler(svc ElectionService) *ElectionHandler {
	return &ElectionHandler{
		svc: svc,
	}
}

// HandleCreateElection godoc
// @Summary      Create an election
// @Description  Creates an election in pending status, awaiting board approval
// @Tags         elections
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateElectionRequest  true  "Election details"
// @Success      201    {object}  domain.Election
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /elections [post]
// @Security     BearerAuth
func (h *ElectionHandler) HandleCreateElection(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateElectionRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	publicResults := true
	if input.PublicResults != nil {
		publicResults = *input.PublicResults
	}

	election := domain.Election{
		Title:               input.Title,
		ChapterID:           input.ChapterID,
		StartsAt:            input.StartsAt,
		EndsAt:              input.EndsAt,
		RequireVerification: input.RequireVerification,
		PublicResults:       publicResults,
		EligibleVoters:      input.EligibleVoters,
	}

	created, err := h.svc.CreateElection(ctx.Request.Context(), actor, election)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleCreateElection -> h.svc.CreateElection -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListElections godoc
// @Summary      List elections
// @Description  Lists elections, optionally filtered by status, chapter or national scope
// @Tags         elections
// @Produce      json
// @Param        status      query     string  false  "pending, approved, active or closed"
// @Param        chapter_id  query     int     false  "Chapter ID"
// @Param        national    query     bool    false  "National elections only"
// @Success      200  {object}  response.ListElectionsResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections [get]
// @Security     BearerAuth
func (h *ElectionHandler) HandleListElections(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter, respErr := parseElectionFilter(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	elections, err := h.svc.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		err = fmt.Errorf("HandleListElections -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ListElectionsResponse{Elections: elections})
}

// HandleGetElection godoc
// @Summary      Get an election
// @Description  Returns the election with positions and candidates nested. Withdrawn candidates appear only with include_withdrawn.
// @Tags         elections
// @Produce      json
// @Param        electionID        path      int   true   "Election ID"
// @Param        include_withdrawn query     bool  false  "Include withdrawn candidates"
// @Success      200  {object}  domain.Election
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID} [get]
// @Security     BearerAuth
func (h *ElectionHandler) HandleGetElection(ctx *gin.Context) {
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

	includeWithdrawn := ctx.Query("include_withdrawn") == "true"

	election, err := h.svc.Get(ctx.Request.Context(), actor, electionID, includeWithdrawn)
	if err != nil {
		if errors.Is(err, service.ErrElectionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
			return
		}

		err = fmt.Errorf("HandleGetElection -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, election)
}

// HandleApproveElection godoc
// @Summary      Approve an election
// @Description  Moves a pending election to approved. Super admins only.
// @Tags         elections
// @Produce      json
// @Param        electionID  path      int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/approve [patch]
// @Security     BearerAuth
func (h *ElectionHandler) HandleApproveElection(ctx *gin.Context) {
	h.handleTransition(ctx, "HandleApproveElection", h.svc.Approve)
}

// HandleStartElection godoc
// @Summary      Start an election
// @Description  Moves an approved election to active, opening the voting window
// @Tags         elections
// @Produce      json
// @Param        electionID  path      int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/start [patch]
// @Security     BearerAuth
func (h *ElectionHandler) HandleStartElection(ctx *gin.Context) {
	h.handleTransition(ctx, "HandleStartElection", h.svc.Start)
}

// HandleCloseElection godoc
// @Summary      Close an election
// @Description  Moves an active election to closed and freezes final turnout
// @Tags         elections
// @Produce      json
// @Param        electionID  path      int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/close [patch]
// @Security     BearerAuth
func (h *ElectionHandler) HandleCloseElection(ctx *gin.Context) {
	h.handleTransition(ctx, "HandleCloseElection", h.svc.Close)
}

func (h *ElectionHandler) handleTransition(ctx *gin.Context, name string, transition func(context.Context, domain.Actor, uint) (domain.Election, error)) {
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

	election, err := transition(ctx.Request.Context(), actor, electionID)
	if err != nil {
		var transitionErr *service.InvalidTransitionError
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
		case errors.As(err, &transitionErr):
			response.RenderErr(ctx, response.ErrInvalidTransition(transitionErr))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("%v -> %w", name, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, election)
}

// HandleCreatePosition godoc
// @Summary      Add a position
// @Description  Adds a position (a race) to an election that is not closed yet
// @Tags         elections
// @Accept       json
// @Produce      json
// @Param        electionID  path      int                            true  "Election ID"
// @Param        input       body      request.CreatePositionRequest  true  "Position details"
// @Success      201  {object}  domain.Position
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/positions [post]
// @Security     BearerAuth
func (h *ElectionHandler) HandleCreatePosition(ctx *gin.Context) {
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

	var input request.CreatePositionRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	position := domain.Position{
		ElectionID: electionID,
		Name:       input.Name,
		OrderIndex: input.OrderIndex,
	}

	created, err := h.svc.CreatePosition(ctx.Request.Context(), actor, position)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrElectionClosed):
			response.RenderErr(ctx, response.ErrVotingWindowClosed(err))
		default:
			err = fmt.Errorf("HandleCreatePosition -> h.svc.CreatePosition -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleExportResults godoc
// @Summary      Export final results
// @Description  Exports the results of a closed election as CSV or JSON, withdrawn candidates included
// @Tags         elections
// @Produce      json
// @Produce      text/csv
// @Param        electionID  path      int     true   "Election ID"
// @Param        format      query     string  false  "csv (default) or json"
// @Success      200  {object}  domain.Election
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/export [get]
// @Security     BearerAuth
func (h *ElectionHandler) HandleExportResults(ctx *gin.Context) {
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

	format := ctx.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unsupported format (%v)", format)))
		return
	}

	election, err := h.svc.Export(ctx.Request.Context(), actor, electionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
		case errors.Is(err, service.ErrValidation):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleExportResults -> h.svc.Export -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	if format == "json" {
		ctx.JSON(http.StatusOK, election)
		return
	}

	writeResultsCSV(ctx, election)
}

func writeResultsCSV(ctx *gin.Context, election domain.Election) {
	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="election-%v-results.csv"`, election.ID))

	w := csv.NewWriter(ctx.Writer)
	w.Write([]string{"position", "candidate", "votes", "percentage"})
	for _, position := range election.Positions {
		for _, candidate := range position.Candidates {
			w.Write([]string{
				position.Name,
				candidate.Name,
				strconv.Itoa(candidate.VotesCount),
				strconv.FormatFloat(candidate.VotePercentage, 'f', 2, 64),
			})
		}
	}
	w.Flush()
}

func parseElectionFilter(ctx *gin.Context) (repository.ElectionFilter, *response.Err) {
	var filter repository.ElectionFilter

	if status := ctx.Query("status"); status != "" {
		switch domain.ElectionStatus(status) {
		case domain.ElectionPending, domain.ElectionApproved, domain.ElectionActive, domain.ElectionClosed:
			filter.Status = domain.ElectionStatus(status)
		default:
			return filter, response.ErrBadRequest(fmt.Errorf("unknown status (%v)", status))
		}
	}

	if raw := ctx.Query("chapter_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid chapter_id (%v)", raw))
		}
		chapterID := uint(id)
		filter.ChapterID = &chapterID
	}

	filter.National = ctx.Query("national") == "true"

	return filter, nil
}
