package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chapterhq/election-api/internal/domain"
)

var ErrTokenInvalid = errors.New("ballot token is invalid")

// DefaultBallotTTL is a verification ceiling, not the voting window.
// A token can outlive its election; the window check is what actually
// decides whether a vote is accepted.
const DefaultBallotTTL = 30 * 24 * time.Hour

type ballotClaims struct {
	ElectionID uint   `json:"eid"`
	Nonce      string `json:"nonce"`
	jwt.RegisteredClaims
}

// BallotTokenService mints and verifies self-contained ballot tokens.
// Verification is stateless; single-use enforcement happens where the
// token's hash is recorded, in the vote store.
type BallotTokenService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewBallotTokenService(signingKey string, ttl time.Duration) *BallotTokenService {
	if ttl <= 0 {
		ttl = DefaultBallotTTL
	}

	return &BallotTokenService{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue mints a signed token binding one voter to one election. The
// nonce keeps two tokens for the same pair from ever colliding.
func (s *BallotTokenService) Issue(voterID, electionID uint) (string, error) {
	if voterID == 0 || electionID == 0 {
		return "", fmt.Errorf("%w: voter and election must be set", ErrTokenInvalid)
	}

	issuedAt := s.now()
	claims := ballotClaims{
		ElectionID: electionID,
		Nonce:      uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(voterID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return token, nil
}

// Verify checks signature, shape and expiry. Anything wrong with the
// token collapses into ErrTokenInvalid; the cause stays in the message.
func (s *BallotTokenService) Verify(token string) (domain.BallotPayload, error) {
	var claims ballotClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.BallotPayload{}, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return domain.BallotPayload{}, ErrTokenInvalid
	}

	voterID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || voterID == 0 || claims.ElectionID == 0 || claims.IssuedAt == nil {
		return domain.BallotPayload{}, fmt.Errorf("%w: malformed claims", ErrTokenInvalid)
	}

	return domain.BallotPayload{
		VoterID:    uint(voterID),
		ElectionID: claims.ElectionID,
		Nonce:      claims.Nonce,
		IssuedAt:   claims.IssuedAt.Time,
	}, nil
}

// Hash is what gets persisted when a token is consumed. The plaintext
// token never touches the database.
func (s *BallotTokenService) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
