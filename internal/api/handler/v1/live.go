package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/broadcast"
	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

// LiveResultsService authorizes a subscriber and hands back the current
// tallies as of the moment of joining.
type LiveResultsService interface {
	LiveSnapshot(ctx context.Context, actor domain.Actor, electionID uint) (domain.Election, error)
}

// Subscriber joins an authorized connection to an election's room.
type Subscriber interface {
	Subscribe(conn *websocket.Conn, electionID uint)
}

type LiveHandler struct {
	elections LiveResultsService
	hub       Subscriber
}

func NewLiveHandler(elections LiveResultsService, hub Subscriber) *LiveHandler {
	return &LiveHandler{
		elections: elections,
		hub:       hub,
	}
}

// HandleLiveResults godoc
// @Summary      Subscribe to live results
// @Description  Upgrades to a websocket, sends an initial-results snapshot, then streams vote-update and election-status events for the election
// @Tags         elections
// @Produce      json
// @Param        electionID  path      int  true  "Election ID"
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /elections/{electionID}/live [get]
// @Security     BearerAuth
func (h *LiveHandler) HandleLiveResults(ctx *gin.Context) {
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

	// Authorization happens before the upgrade so a rejected subscriber
	// gets a proper error envelope instead of a dropped socket.
	election, err := h.elections.LiveSnapshot(ctx.Request.Context(), actor, electionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrElectionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("election", "electionID", electionID))
		case errors.Is(err, service.ErrUnauthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleLiveResults -> h.elections.LiveSnapshot -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed",
			zap.Uint("election_id", electionID), zap.Error(err))
		return
	}

	// The snapshot goes out before the room join, so the subscriber's
	// first frame always reflects counters the later deltas build on.
	snapshot := broadcast.NewSnapshotEvent(election, time.Now())
	if err := conn.WriteJSON(snapshot); err != nil {
		conn.Close()
		return
	}

	h.hub.Subscribe(conn, electionID)
}
