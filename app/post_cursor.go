package app

import (
	"context"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
)

const (
	DefaultPageSize int16 = 20
	MaxPageSize     int16 = 50
)

type PostCursorOpts struct {
	Limit int16
}

// FeedPage is one page of a feed. HasMore is a heuristic: it is true iff
// the page came back full, so a final page of exactly Limit rows yields
// one extra empty fetch. Callers treat an empty Posts slice as the
// definitive end of the feed regardless of the previous HasMore.
type FeedPage struct {
	Posts   []*model.Post `json:"posts"`
	Cursor  interface{}   `json:"cursor"`
	HasMore bool          `json:"hasMore"`
}

type PostCursor interface {
	Posts(ctx context.Context, database appDb.Database, user *model.User, opts *PostCursorOpts) (*FeedPage, error)
}

// ClampPageSize applies the default and the hard cap of MaxPageSize
func ClampPageSize(requested int16) int16 {
	if requested <= 0 {
		return DefaultPageSize
	}
	if requested > MaxPageSize {
		return MaxPageSize
	}
	return requested
}

func voteHistoryOf(user *model.User) string {
	if user == nil {
		return ""
	}
	return user.Id
}
