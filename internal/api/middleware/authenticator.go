package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/pkg/jwthelper"
)

// ContextKeyActor is where VerifyJWT leaves the authenticated actor
// for downstream handlers.
const ContextKeyActor = "actor"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    "UNAUTHORIZED",
				"message": "missing bearer token",
			})

			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    "UNAUTHORIZED",
				"message": "invalid session token",
			})

			return
		}

		c.Set(ContextKeyActor, domain.Actor{
			MemberID:  claims.MemberID,
			Role:      claims.Role,
			ChapterID: claims.ChapterID,
			Verified:  claims.Verified,
		})

		c.Next()
	}
}
