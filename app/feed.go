package app

import (
	"context"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
)

// GetFeedPage resolves one page for the given cursor, clamping the
// requested page size to MaxPageSize.
func GetFeedPage(
	ctx context.Context,
	database appDb.Database,
	user *model.User,
	cursor PostCursor,
	requestedLimit int16,
) (*FeedPage, error) {
	return cursor.Posts(ctx, database, user, &PostCursorOpts{
		Limit: ClampPageSize(requestedLimit),
	})
}
