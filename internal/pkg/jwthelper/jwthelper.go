package jwthelper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

const defaultSessionTTL = 24 * time.Hour

// SessionClaims is the portal's session contract: who the member is,
// what they may do, and which chapter they belong to. The portal mints
// these; this service only verifies them against the shared key.
type SessionClaims struct {
	MemberID  uint   `json:"member_id"`
	Role      string `json:"role"`
	ChapterID uint   `json:"chapter_id"`
	Verified  bool   `json:"verified"`
	jwt.RegisteredClaims
}

func GenerateToken(signingKey []byte, memberID uint, role string, chapterID uint, verified bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		MemberID:  memberID,
		Role:      role,
		ChapterID: chapterID,
		Verified:  verified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(defaultSessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return token, nil
}

func ParseToken(signingKey []byte, tokenString string) (*SessionClaims, error) {
	var claims SessionClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !token.Valid || claims.MemberID == 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
