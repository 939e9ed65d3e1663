package routes

import (
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// shared throttle for the non-post write endpoints
const (
	writeRatePerSecond rate.Limit = 2
	writeBurst                    = 20
)

type voteRoutes struct {
	db appDb.Database
}

func AddVoteRoutes(group *gin.RouterGroup, database appDb.Database, authClient *firebaseAuth.Client, logger *zap.Logger) {
	routes := voteRoutes{db: database}
	posts := group.Group("/posts", middleware.Auth(database, authClient, &middleware.AuthConfig{}))
	posts.POST("/:id/votes",
		middleware.RequireNotBanned(),
		middleware.RateLimit(writeRatePerSecond, writeBurst),
		util.HandlerWrapper(routes.castVote, &util.HandlerOpts{Logger: logger}))
}

type castVoteReq struct {
	Direction string `json:"direction" binding:"required"`
}

// castVote records, switches or cancels the caller's vote on a post.
// Sending the direction the caller already voted cancels that vote.
func (vr *voteRoutes) castVote(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		return nil, &util.HTTPError{
			Kind:    util.KindValidation,
			Status:  http.StatusBadRequest,
			Message: "invalid vote direction",
		}
	}

	user := middleware.MustGetLocalUser(c)
	outcome, err := vr.db.CastVote(c, user.Id, postId, direction)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"outcome": outcome}, nil
}
