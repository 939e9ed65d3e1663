package routes

import (
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/services"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
)

const (
	adminReportsLimit = 200
	adminUsersLimit   = 500
)

type adminRoutes struct {
	db          appDb.Database
	broadcaster *services.Broadcaster
}

func AddAdminRoutes(
	group *gin.RouterGroup,
	database appDb.Database,
	authClient *firebaseAuth.Client,
	broadcaster *services.Broadcaster,
	logger *zap.Logger,
) {
	routes := adminRoutes{db: database, broadcaster: broadcaster}
	opts := &util.HandlerOpts{Logger: logger}

	admin := group.Group("/admin",
		middleware.Auth(database, authClient, &middleware.AuthConfig{}),
		middleware.RequireAdmin())
	admin.POST("/posts/:id/visibility", util.HandlerWrapper(routes.setPostVisibility, opts))
	admin.DELETE("/posts/:id", util.HandlerWrapper(routes.deletePost, opts))
	admin.DELETE("/comments/:id", util.HandlerWrapper(routes.deleteComment, opts))
	admin.POST("/users/:id/ban", util.HandlerWrapper(routes.setUserBanned, opts))
	admin.GET("/reports", util.HandlerWrapper(routes.getReports, opts))
	admin.GET("/users", util.HandlerWrapper(routes.getUsers, opts))
}

type setVisibilityReq struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// setPostVisibility hides or unhides a post. Setting the state the post
// is already in affects zero rows and is not an error.
func (ar *adminRoutes) setPostVisibility(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	var req setVisibilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	rows, err := ar.db.SetPostHidden(c, postId, *req.Hidden)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if rows > 0 && *req.Hidden {
		ar.broadcaster.Publish(services.EventPostHidden, gin.H{"id": postId})
	}
	return gin.H{"rowsAffected": rows}, nil
}

func (ar *adminRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	rows, err := ar.db.DeletePost(c, postId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if rows > 0 {
		ar.broadcaster.Publish(services.EventPostDeleted, gin.H{"id": postId})
	}
	return gin.H{"rowsAffected": rows}, nil
}

func (ar *adminRoutes) deleteComment(c *gin.Context) (interface{}, *util.HTTPError) {
	commentId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	rows, err := ar.db.DeleteComment(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"rowsAffected": rows}, nil
}

type setBannedReq struct {
	Banned *bool `json:"banned" binding:"required"`
}

func (ar *adminRoutes) setUserBanned(c *gin.Context) (interface{}, *util.HTTPError) {
	userId := c.Param("id")
	if userId == "" {
		return nil, util.MalformedIdHTTPErr
	}

	var req setBannedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	rows, err := ar.db.SetUserBanned(c, userId, *req.Banned)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"rowsAffected": rows}, nil
}

func (ar *adminRoutes) getReports(c *gin.Context) (interface{}, *util.HTTPError) {
	reports, err := ar.db.GetRecentReports(c, adminReportsLimit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"reports": reports}, nil
}

func (ar *adminRoutes) getUsers(c *gin.Context) (interface{}, *util.HTTPError) {
	users, err := ar.db.GetRecentUsers(c, adminUsersLimit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"users": users}, nil
}
