package app

import (
	"context"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
)

// RankedCursor pages the score-ordered feeds ("hot", "controversial") by
// row offset. Offset paging is not stable under concurrent score changes:
// a post whose rank crosses the page boundary between fetches can be
// skipped or repeated. That is an accepted property of score-ordered
// pagination, not something this cursor papers over.
type RankedCursor struct {
	Sort   model.SortMode `json:"sort"`
	Offset int            `json:"offset"`
}

func (rc *RankedCursor) Posts(ctx context.Context, database appDb.Database, user *model.User, opts *PostCursorOpts) (*FeedPage, error) {
	posts, err := database.GetFeedPosts(ctx, &appDb.FeedQuery{
		Sort:          rc.Sort,
		Offset:        rc.Offset,
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
		page.Cursor = &RankedCursor{Sort: rc.Sort, Offset: rc.Offset + len(posts)}
	}
	return page, nil
}
