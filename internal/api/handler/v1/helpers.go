package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/api/middleware"
	"github.com/chapterhq/election-api/internal/domain"
)

func getActorFromContext(ctx *gin.Context) (domain.Actor, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyActor)
	if !exists {
		return domain.Actor{}, response.ErrPermissionDenied(errors.New("no authenticated member on this request"))
	}

	actor, ok := value.(domain.Actor)
	if !ok {
		return domain.Actor{}, response.ErrInternalServerError(errors.New("actor context entry has the wrong type"))
	}

	return actor, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v (%v)", name, raw))
	}

	return uint(id), nil
}
