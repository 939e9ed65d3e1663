package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func hit(engine *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.RemoteAddr = remoteAddr
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder.Code
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	engine := gin.New()
	engine.POST("/write", RateLimit(rate.Limit(0), 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, hit(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, hit(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(engine, "10.0.0.1:1234"))
}

func TestRateLimitIsPerCaller(t *testing.T) {
	engine := gin.New()
	engine.POST("/write", RateLimit(rate.Limit(0), 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, hit(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(engine, "10.0.0.1:1234"))
	// a different caller has its own bucket
	assert.Equal(t, http.StatusOK, hit(engine, "10.0.0.2:1234"))
}

func TestRateLimitKeysOnAccountOverAddress(t *testing.T) {
	engine := gin.New()
	engine.POST("/write",
		func(c *gin.Context) {
			c.Set(USER_KEY, &model.User{Id: "alice"})
		},
		RateLimit(rate.Limit(0), 1),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

	// same account from two addresses shares one bucket
	assert.Equal(t, http.StatusOK, hit(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(engine, "10.0.0.2:1234"))
}
