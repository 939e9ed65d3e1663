package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"golang.org/x/time/rate"
)

var rateLimitedErr = &util.HTTPError{
	Kind:    util.KindRateLimited,
	Status:  http.StatusTooManyRequests,
	Message: "too many requests, slow down",
}

// RateLimit caps request throughput per caller with a token bucket. Keys
// on the local account when one is attached, the client address
// otherwise, so it works on both sides of Auth.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	return func(c *gin.Context) {
		key := c.ClientIP()
		if user := GetUserMaybe(c); user != nil {
			key = user.Id
		}

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(limit, burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			util.HandleHTTPErrorRes(c, rateLimitedErr)
			c.Abort()
			return
		}
		c.Next()
	}
}
