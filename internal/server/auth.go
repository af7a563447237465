package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	chatsync_errors "chatsync/pkg/errors"
)

const userIDContextKey = "user_id"

type AccessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseAccessToken validates an HS256 bearer token and returns its claims.
func ParseAccessToken(secret []byte, tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, chatsync_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chatsync_errors.ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil {
		return AccessClaims{}, chatsync_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return AccessClaims{}, chatsync_errors.ErrUnauthorized
	}

	return *claims, nil
}

func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ParseAccessToken(secret, extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
