package routes

import (
	"net/http"

	"time"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/services"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// post creation is throttled harder than other writes
const (
	createPostInterval = 20 * time.Second
	createPostBurst    = 3
)

type postRoutes struct {
	db          appDb.Database
	classifier  *services.Classifier
	broadcaster *services.Broadcaster
}

func AddPostRoutes(
	group *gin.RouterGroup,
	database appDb.Database,
	authClient *firebaseAuth.Client,
	classifier *services.Classifier,
	broadcaster *services.Broadcaster,
	logger *zap.Logger,
) {
	routes := postRoutes{db: database, classifier: classifier, broadcaster: broadcaster}
	opts := &util.HandlerOpts{Logger: logger}

	posts := group.Group("/posts", middleware.Auth(database, authClient, &middleware.AuthConfig{}))
	posts.PUT("",
		middleware.RequireNotBanned(),
		middleware.RateLimit(rate.Every(createPostInterval), createPostBurst),
		util.HandlerWrapper(routes.createPost, opts))
	posts.GET("/:id", util.HandlerWrapper(routes.getPostById, opts))
}

type createPostReq struct {
	Content string `json:"content" binding:"required"`
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	classification := pr.classifier.Classify(req.Content)
	if !classification.Allowed {
		return nil, &util.HTTPError{
			Kind:    util.KindValidation,
			Status:  http.StatusBadRequest,
			Message: classification.Reason,
		}
	}

	user := middleware.MustGetLocalUser(c)
	postId, err := pr.db.CreatePost(c, &appDb.CreatePost{
		CreatorId: user.Id,
		Content:   classification.SanitizedText,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	pr.broadcaster.Publish(services.EventNewPost, gin.H{"id": postId})
	return gin.H{"id": postId}, nil
}

func (pr *postRoutes) getPostById(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}

	opts := &appDb.PostQueryOpts{}
	if user := middleware.GetUserMaybe(c); user != nil {
		opts.VoteHistoryOf = user.Id
	}
	post, err := pr.db.GetPostById(c, postId, opts)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.HTTPError{
			Kind:    util.KindNotFound,
			Status:  http.StatusNotFound,
			Message: "post not found",
		}
	}
	return post, nil
}
