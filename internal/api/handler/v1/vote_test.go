package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterhq/election-api/internal/api/handler/v1/response"
	"github.com/chapterhq/election-api/internal/api/middleware"
	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/service"
)

type stubVoteService struct {
	issueToken string
	issueErr   error
	castResult domain.VoteResult
	castErr    error
}

func (s *stubVoteService) IssueBallot(context.Context, domain.Actor, uint) (string, error) {
	return s.issueToken, s.issueErr
}

func (s *stubVoteService) CastVote(context.Context, string, uint, uint) (domain.VoteResult, error) {
	return s.castResult, s.castErr
}

func newVoteRouter(svc VoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewVoteHandler(svc)
	router.POST("/votes", handler.HandleCastVote)
	router.POST("/elections/:electionID/ballot", func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyActor, domain.Actor{MemberID: 7, Role: domain.RoleMember, ChapterID: 3, Verified: true})
		handler.HandleIssueBallot(ctx)
	})

	return router
}

func castVote(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, response.Err) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/votes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope response.Err
	if w.Code >= 400 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

const validCastBody = `{"token":"some-token","position_id":10,"candidate_id":100}`

func TestHandleCastVote_Success(t *testing.T) {
	router := newVoteRouter(&stubVoteService{
		castResult: domain.VoteResult{
			ElectionID:     1,
			PositionID:     10,
			CandidateID:    100,
			CandidateVotes: 1,
			PositionVotes:  1,
			VotePercentage: 100,
		},
	})

	w, _ := castVote(t, router, validCastBody)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.VoteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.CandidateVotes)
	assert.InDelta(t, 100.0, result.VotePercentage, 0.001)
}

// The client has to be able to tell these three refusals apart.
func TestHandleCastVote_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"invalid token", service.ErrTokenInvalid, http.StatusUnauthorized, response.KindTokenInvalid},
		{"replayed token", service.ErrTokenAlreadyUsed, http.StatusConflict, response.KindTokenAlreadyUsed},
		{"second vote fresh token", service.ErrAlreadyVoted, http.StatusConflict, response.KindTokenAlreadyUsed},
		{"window closed", service.ErrVotingWindowClosed, http.StatusConflict, response.KindVotingWindowClosed},
		{"race mismatch", service.ErrValidation, http.StatusBadRequest, response.KindValidationError},
		{"election missing", service.ErrElectionNotFound, http.StatusNotFound, response.KindNotFound},
		{"store timeout", service.ErrStoreTimeout, http.StatusServiceUnavailable, response.KindStoreTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newVoteRouter(&stubVoteService{castErr: tt.err})

			w, envelope := castVote(t, router, validCastBody)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantKind, envelope.Kind)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}

func TestHandleCastVote_RejectsMalformedBody(t *testing.T) {
	router := newVoteRouter(&stubVoteService{})

	w, envelope := castVote(t, router, `{"token":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.KindValidationError, envelope.Kind)

	w, _ = castVote(t, router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleIssueBallot(t *testing.T) {
	router := newVoteRouter(&stubVoteService{issueToken: "minted-token"})

	req := httptest.NewRequest(http.MethodPost, "/elections/1/ballot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body response.BallotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "minted-token", body.Token)
}

func TestHandleIssueBallot_WindowClosed(t *testing.T) {
	router := newVoteRouter(&stubVoteService{issueErr: service.ErrVotingWindowClosed})

	req := httptest.NewRequest(http.MethodPost, "/elections/1/ballot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
