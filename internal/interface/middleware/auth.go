package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/delcom/foodshare/internal/domain/repository"
	"github.com/delcom/foodshare/pkg/helpers"
	"github.com/delcom/foodshare/pkg/response"
)

const bearerPrefix = "Bearer "

// Auth guards every API request. The checks run strictly in order and the
// first failure terminates the request; handlers behind this middleware can
// rely on AuthUser being populated.
//
//  1. Allow-listed path prefixes pass untouched.
//  2. The Authorization header must carry a Bearer token.
//  3. The token signature and expiry must verify.
//  4. The token must decode to a user id.
//  5. The (user, token) pair must still exist in the token store — rows are
//     deleted on logout and password change, which is what revokes a token
//     whose signature is otherwise still good.
//  6. The user record must exist.
func Auth(jwt *helpers.JWTManager, tokens repository.AuthTokenRepository, users repository.UserRepository, publicPrefixes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			reject(c, http.StatusUnauthorized, "authentication token not found")
			return
		}
		token := strings.TrimPrefix(header, bearerPrefix)

		if !jwt.Validate(token, true) {
			reject(c, http.StatusUnauthorized, "authentication token invalid")
			return
		}

		userID, ok := jwt.ExtractUserID(token)
		if !ok {
			reject(c, http.StatusUnauthorized, "authentication token format invalid")
			return
		}

		row, err := tokens.FindUserToken(c.Request.Context(), userID, token)
		if err != nil || row == nil {
			reject(c, http.StatusUnauthorized, "authentication token expired")
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || u == nil {
			reject(c, http.StatusNotFound, "user not found")
			return
		}

		SetAuthUser(c, u)
		c.Next()
	}
}

func reject(c *gin.Context, code int, message string) {
	response.Error[any](c, code, message, nil)
	c.Abort()
}
