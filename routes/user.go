package routes

import (
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
)

const leaderboardSize = 20

type userRoutes struct {
	db appDb.Database
}

func AddUserRoutes(group *gin.RouterGroup, database appDb.Database, authClient *firebaseAuth.Client, logger *zap.Logger) {
	routes := userRoutes{db: database}
	opts := &util.HandlerOpts{Logger: logger}

	users := group.Group("/users")
	users.PUT("",
		middleware.Auth(database, authClient, &middleware.AuthConfig{AccountNotRequired: true}),
		util.HandlerWrapper(routes.createUser, opts))
	users.GET("/me",
		middleware.Auth(database, authClient, &middleware.AuthConfig{}),
		util.HandlerWrapper(routes.getProfile, opts))
	users.GET("/leaderboard", util.HandlerWrapper(routes.getLeaderboard, opts))
}

type createUserReq struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// createUser provisions the local account for the verified session.
// Calling it again for an existing account is a conflict.
func (ur *userRoutes) createUser(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	token := middleware.MustGetToken(c)
	err := ur.db.CreateUser(c, &model.User{
		Id:          token.UID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": token.UID}, nil
}

func (ur *userRoutes) getProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	return middleware.MustGetLocalUser(c), nil
}

func (ur *userRoutes) getLeaderboard(c *gin.Context) (interface{}, *util.HTTPError) {
	users, err := ur.db.GetLeaderboard(c, leaderboardSize)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"users": users}, nil
}
