package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository"
	"github.com/chapterhq/election-api/internal/service"
)

type AuditService interface {
	List(ctx context.Context, actor domain.Actor, filter repository.AuditFilter) ([]domain.AuditEntry, error)
}

type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{
		svc: svc,
	}
}

// HandleListAudit godoc
// @Summary      Read the audit trail
// @Description  Lists audit entries in reverse-chronological order, filtered by actor, action, election or chapter. Super admins only.
// @Tags         audit
// @Produce      json
// @Param        actor_id     query     int     false  "Actor member ID"
// @Param        action       query     string  false  "Action, e.g. vote.cast"
// @Param        election_id  query     int     false  "Election ID"
// @Param        chapter_id   query     int     false  "Chapter ID"
// @Param        limit        query     int     false  "Page size (default 50, max 200)"
// @Param        offset       query     int     false  "Offset for pagination"
// @Success      200  {object}  response.AuditEntriesResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /audit [get]
// @Security     BearerAuth
func (h *AuditHandler) HandleListAudit(ctx *gin.Context) {
	actor, respErr := getActorFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter, respErr := parseAuditFilter(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entries, err := h.svc.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("HandleListAudit -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.AuditEntriesResponse{Entries: entries})
}

func parseAuditFilter(ctx *gin.Context) (repository.AuditFilter, *response.Err) {
	var filter repository.AuditFilter

	for name, target := range map[string]**uint{
		"actor_id":    &filter.ActorID,
		"election_id": &filter.ElectionID,
		"chapter_id":  &filter.ChapterID,
	} {
		raw := ctx.Query(name)
		if raw == "" {
			continue
		}

		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid %v (%v)", name, raw))
		}
		value := uint(id)
		*target = &value
	}

	filter.Action = domain.AuditAction(ctx.Query("action"))

	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid limit (%v)", raw))
		}
		filter.Limit = limit
	}
	if raw := ctx.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid offset (%v)", raw))
		}
		filter.Offset = offset
	}

	return filter, nil
}
