package app

import (
	"context"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
)

// NewestCursor pages the "new" feed anchored on the id of the last post
// returned. Because the constraint is a strict id bound rather than a row
// count, pages already handed out never shift when posts are inserted
// concurrently: no existing post is skipped or repeated.
type NewestCursor struct {
	LastId int64 `json:"lastId,omitempty"`
}

func (nc *NewestCursor) Posts(ctx context.Context, database appDb.Database, user *model.User, opts *PostCursorOpts) (*FeedPage, error) {
	posts, err := database.GetFeedPosts(ctx, &appDb.FeedQuery{
		Sort:          model.SortNew,
		LastId:        nc.LastId,
		Limit:         opts.Limit,
		VoteHistoryOf: voteHistoryOf(user),
	})
	if err != nil {
		return nil, err
	}
	page := &FeedPage{
		Posts:   posts,
		HasMore: len(posts) == int(opts.Limit),
	}
	if len(posts) > 0 {
		page.Cursor = &NewestCursor{LastId: posts[len(posts)-1].Id}
	}
	return page, nil
}
