package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/sachalprvt-cloud/hibikiiii/app"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/middleware"
	"github.com/sachalprvt-cloud/hibikiiii/util"
	"go.uber.org/zap"
)

type feedRoutes struct {
	db appDb.Database
}

func AddFeedRoutes(group *gin.RouterGroup, database appDb.Database, authClient *firebaseAuth.Client, logger *zap.Logger) {
	routes := feedRoutes{db: database}
	feeds := group.Group("/feeds",
		middleware.Auth(database, authClient, &middleware.AuthConfig{SessionNotRequired: true}))
	feeds.POST("", util.HandlerWrapper(routes.getFeed, &util.HandlerOpts{Logger: logger}))
}

// getFeed resolves one feed page. The body is {"sort": ..., "cursor":
// {...}, "limit": N}; an absent cursor starts from the first page and the
// response carries the cursor for the next one.
func (fr *feedRoutes) getFeed(c *gin.Context) (interface{}, *util.HTTPError) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	var cursor app.TaggedUnionCursor
	if err := json.Unmarshal(body, &cursor); err != nil {
		if errors.Is(err, app.ErrUnknownSortMode) {
			return nil, &util.HTTPError{
				Kind:    util.KindValidation,
				Status:  http.StatusBadRequest,
				Message: "unknown sort mode",
			}
		}
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	var limits struct {
		Limit int16 `json:"limit"`
	}
	if err := json.Unmarshal(body, &limits); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	page, err := app.GetFeedPage(c, fr.db, middleware.GetUserMaybe(c), cursor.PostCursor, limits.Limit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return page, nil
}
