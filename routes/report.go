package routes

import (
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
)

type reportRoutes struct {
	db appDb.Database
}

func AddReportRoutes(group *gin.RouterGroup, database appDb.Database, authClient *firebaseAuth.Client, logger *zap.Logger) {
	routes := reportRoutes{db: database}
	posts := group.Group("/posts", middleware.Auth(database, authClient, &middleware.AuthConfig{}))
	posts.POST("/:id/reports",
		middleware.RequireNotBanned(),
		middleware.RateLimit(writeRatePerSecond, writeBurst),
		util.HandlerWrapper(routes.createReport, &util.HandlerOpts{Logger: logger}))
}

type createReportReq struct {
	Reason string `json:"reason"`
}

func (rr *reportRoutes) createReport(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	var req createReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	user := middleware.MustGetLocalUser(c)
	reportId, err := rr.db.CreateReport(c, user.Id, &appDb.CreateReport{
		PostId: postId,
		Reason: req.Reason,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": reportId}, nil
}
