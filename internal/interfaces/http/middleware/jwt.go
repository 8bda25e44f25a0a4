package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/infrastructure/auth"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuth validates the bearer token and stores the claims on the
// context. Requests without a valid token are rejected with 401; the
// access guard decides afterwards whether the identity may proceed.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, BearerPrefix)
		if token == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			message := "token validation failed"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "token has expired"
			}
			abortUnauthorized(c, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the validated claims, or nil outside JWTAuth.
func GetClaims(c *gin.Context) *auth.Claims {
	value, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetIdentity builds the access identity for the current request. A
// guest identity is returned when no claims are present.
func GetIdentity(c *gin.Context) access.Identity {
	claims := GetClaims(c)
	if claims == nil {
		return access.Identity{}
	}
	return access.Identity{
		UserID:  claims.UserID,
		Company: claims.Company,
		Roles:   claims.Roles,
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrKindUnauthorized, message, GetRequestID(c)))
}
