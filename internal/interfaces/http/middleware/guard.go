package middleware

import (
	"context"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AccessGuard is the policy verdict for one identity.
type AccessGuard interface {
	Authorize(ctx context.Context, id access.Identity) error
}

// Guard gates authenticated routes behind the access policy. It runs
// after JWTAuth and fails closed: a policy load failure denies with 503,
// never an allow.
func Guard(guard AccessGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Authorize(c.Request.Context(), GetIdentity(c)); err != nil {
			abortGuard(c, err)
			return
		}
		c.Next()
	}
}

func abortGuard(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		kind := dto.NormalizeErrorKind(domainErr.Code)
		c.AbortWithStatusJSON(dto.GetHTTPStatus(kind),
			dto.NewErrorResponse(kind, domainErr.Message, GetRequestID(c)))
		return
	}
	c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrKindInternal),
		dto.NewErrorResponse(dto.ErrKindInternal, "authorization failed", GetRequestID(c)))
}
