package middleware

import (
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/sachalprvt-cloud/hibikiiii/util"
)

const (
	TOKEN_KEY = "authToken"
	USER_KEY  = "user"
)

type AuthConfig struct {
	// a session is not required to access the route
	SessionNotRequired bool
	// the session does not need a local account attached
	AccountNotRequired bool
}

var unauthorizedErr = &util.HTTPError{
	Kind:    util.KindUnauthorized,
	Status:  http.StatusUnauthorized,
	Message: "valid token required",
}

var accountRequiredErr = &util.HTTPError{
	Kind:    util.KindUnauthorized,
	Status:  http.StatusUnauthorized,
	Message: "account required",
}

// Auth verifies the bearer token and attaches the token and the local
// account to the request context. What is mandatory is driven by config.
func Auth(userDB appDb.UserDatabase, authClient *firebaseAuth.Client, config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len("Bearer ") {
			if config.SessionNotRequired {
				c.Next()
				return
			}
			util.HandleHTTPErrorRes(c, unauthorizedErr)
			c.Abort()
			return
		}

		token, err := authClient.VerifyIDToken(c, header[len("Bearer "):])
		if err != nil {
			if config.SessionNotRequired {
				c.Next()
				return
			}
			util.HandleHTTPErrorRes(c, unauthorizedErr)
			c.Abort()
			return
		}
		c.Set(TOKEN_KEY, token)

		user, err := userDB.GetUser(c, token.UID)
		if err != nil {
			util.HandleHTTPErrorRes(c, util.BuildDbHTTPErr(err))
			c.Abort()
			return
		}
		if user == nil && !config.AccountNotRequired {
			util.HandleHTTPErrorRes(c, accountRequiredErr)
			c.Abort()
			return
		}
		if user != nil {
			c.Set(USER_KEY, user)
		}
		c.Next()
	}
}

// RequireNotBanned rejects write attempts from banned accounts. Must run
// after Auth.
func RequireNotBanned() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := MustGetLocalUser(c)
		if user.IsBanned {
			util.HandleHTTPErrorRes(c, &util.HTTPError{
				Kind:    util.KindUnauthorized,
				Status:  http.StatusForbidden,
				Message: "account is banned",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin accounts. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := MustGetLocalUser(c)
		if !user.IsAdmin {
			util.HandleHTTPErrorRes(c, &util.HTTPError{
				Kind:    util.KindUnauthorized,
				Status:  http.StatusForbidden,
				Message: "admin required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MustGetToken can only be used on routes where a session is required
func MustGetToken(c *gin.Context) *firebaseAuth.Token {
	return c.MustGet(TOKEN_KEY).(*firebaseAuth.Token)
}

// MustGetLocalUser can only be used on routes where an account is
// required
func MustGetLocalUser(c *gin.Context) *model.User {
	return c.MustGet(USER_KEY).(*model.User)
}

// GetUserMaybe returns the local account or nil when the request is
// anonymous
func GetUserMaybe(c *gin.Context) *model.User {
	val, exists := c.Get(USER_KEY)
	if !exists {
		return nil
	}
	return val.(*model.User)
}
