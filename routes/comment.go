package routes

import (
	"net/http"
	"strconv"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/sachalprvt-cloud/hibikiiii/app"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/services"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
)

type commentRoutes struct {
	db         appDb.Database
	classifier *services.Classifier
}

func AddCommentRoutes(
	group *gin.RouterGroup,
	database appDb.Database,
	authClient *firebaseAuth.Client,
	classifier *services.Classifier,
	logger *zap.Logger,
) {
	routes := commentRoutes{db: database, classifier: classifier}
	opts := &util.HandlerOpts{Logger: logger}

	posts := group.Group("/posts", middleware.Auth(database, authClient, &middleware.AuthConfig{}))
	posts.PUT("/:id/comments",
		middleware.RequireNotBanned(),
		middleware.RateLimit(writeRatePerSecond, writeBurst),
		util.HandlerWrapper(routes.createComment, opts))
	posts.GET("/:id/comments", util.HandlerWrapper(routes.getComments, opts))
}

type createCommentReq struct {
	Content string `json:"content" binding:"required"`
}

func (cr *commentRoutes) createComment(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	var req createCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	classification := cr.classifier.Classify(req.Content)
	if !classification.Allowed {
		return nil, &util.HTTPError{
			Kind:    util.KindValidation,
			Status:  http.StatusBadRequest,
			Message: classification.Reason,
		}
	}

	user := middleware.MustGetLocalUser(c)
	commentId, err := cr.db.CreateComment(c, &appDb.CreateComment{
		PostId:    postId,
		CreatorId: user.Id,
		Content:   classification.SanitizedText,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": commentId}, nil
}

func (cr *commentRoutes) getComments(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	var lastId int64
	if raw := c.Query("cursor"); raw != "" {
		parsed, parseErr := util.ParseId(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		lastId = parsed
	}
	var limit int16
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 16)
		if err != nil {
			return nil, &util.HTTPError{
				Kind:    util.KindValidation,
				Status:  http.StatusBadRequest,
				Message: "limit malformed",
			}
		}
		limit = int16(parsed)
	}
	limit = app.ClampPageSize(limit)

	comments, err := cr.db.GetComments(c, postId, lastId, limit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	res := gin.H{
		"comments": comments,
		"hasMore":  len(comments) == int(limit),
	}
	if len(comments) > 0 {
		res["cursor"] = comments[len(comments)-1].Id
	}
	return res, nil
}
