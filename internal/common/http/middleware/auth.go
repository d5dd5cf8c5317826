package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"compliflow/pkg/errors"
	"compliflow/pkg/utils/contextkey"
	"compliflow/pkg/utils/response"
)

// ReviewerClaims are the JWT claims carried by reviewer access tokens.
type ReviewerClaims struct {
	Reviewer string `json:"reviewer"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates a bearer token signed with the given HMAC secret and stores
// the reviewer identity in the request context. When secret is empty the
// middleware is a pass-through, so deployments without auth keep working.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortWithErrorCode(c, errors.Unauthorized, "missing authorization header")
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.AbortWithErrorCode(c, errors.Unauthorized, "invalid authorization header")
			return
		}

		claims := &ReviewerClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			if strings.Contains(err.Error(), jwt.ErrTokenExpired.Error()) {
				response.AbortWithErrorCode(c, errors.TokenExpired, "token expired")
				return
			}
			response.AbortWithErrorCode(c, errors.TokenInvalid, "invalid token")
			return
		}
		if !token.Valid {
			response.AbortWithErrorCode(c, errors.TokenInvalid, "invalid token")
			return
		}

		ctx := context.WithValue(c.Request.Context(), contextkey.Reviewer, claims.Reviewer)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(contextkey.Reviewer), claims.Reviewer)

		c.Next()
	}
}

// IssueToken signs a reviewer token. Used by the CLI and tests.
func IssueToken(secret, reviewer, role string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ReviewerClaims{
		Reviewer:         reviewer,
		Role:             role,
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(secret))
}
