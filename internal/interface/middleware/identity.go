package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/delcom/foodshare/internal/domain/entity"
)

// ctxAuthUserKey is where the auth middleware parks the resolved user. The
// slot lives on the per-request gin context, never on shared state, so
// identities cannot leak between concurrent requests.
const ctxAuthUserKey = "authUser"

// SetAuthUser records the resolved identity for the rest of the request.
// Only the auth middleware should call this.
func SetAuthUser(c *gin.Context, u *entity.User) {
	c.Set(ctxAuthUserKey, u)
}

// AuthUser returns the identity resolved for this request, if any.
func AuthUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ctxAuthUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// IsAuthenticated reports whether an identity has been resolved.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := AuthUser(c)
	return ok
}
