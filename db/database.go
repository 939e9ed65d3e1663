package db

import (
	"context"
	"database/sql"

	"github.com/sachalprvt-cloud/hibikiiii/model"

	_ "github.com/go-sql-driver/mysql"
)

// KarmaPerPost is the posting credit applied to the author's karma
// inside the post-creation transaction
const KarmaPerPost = 5

type Database interface {
	PostDatabase
	VoteDatabase
	ReportDatabase
	CommentDatabase
	UserDatabase
	GetSQLDB() *sql.DB
	Close() error
}

type CreatePost struct {
	CreatorId string
	Content   string
}

type CreateComment struct {
	PostId    int64
	CreatorId string
	Content   string
}

type CreateReport struct {
	PostId int64
	Reason string
}

// PostQueryOpts applies to single-post reads
type PostQueryOpts struct {
	// VoteHistoryOf joins the given user's own vote onto the result
	VoteHistoryOf string
	// IncludeHidden lets admin reads see HIDDEN posts. DELETED posts are
	// never returned by any read path.
	IncludeHidden bool
}

// FeedQuery describes one feed page. Exactly one pagination anchor is
// used per sort: LastId for SortNew (strict id < LastId), Offset for the
// score-ordered sorts.
type FeedQuery struct {
	Sort          model.SortMode
	LastId        int64 // 0 means first page
	Offset        int
	Limit         int16
	VoteHistoryOf string
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId int64, err error)
	// GetPostById returns nil when the post is absent or not visible to
	// the caller
	GetPostById(ctx context.Context, id int64, opts *PostQueryOpts) (*model.Post, error)
	GetFeedPosts(ctx context.Context, query *FeedQuery) ([]*model.Post, error)
	// SetPostHidden returns the number of rows changed (0 when the post
	// was already in the target state). Fails with ErrPostNotFound or, on
	// deleted posts, ErrInvalidTransition.
	SetPostHidden(ctx context.Context, id int64, hidden bool) (rowsAffected int64, err error)
	// DeletePost purges the post's comments, reports and votes and
	// tombstones the post row, all in one transaction. Idempotent:
	// deleting an absent or already-deleted post affects zero rows.
	DeletePost(ctx context.Context, id int64) (rowsAffected int64, err error)
}

type VoteDatabase interface {
	// CastVote serializes the read-resolve-write sequence for one
	// (voter, post) pair and mirrors the vote mutation onto the post's
	// tallies in the same transaction
	CastVote(ctx context.Context, voterId string, postId int64, direction model.Direction) (model.CastOutcome, error)
}

type ReportDatabase interface {
	// CreateReport inserts the report and, inside the same transaction,
	// hides the post once its report count reaches the store's threshold
	CreateReport(ctx context.Context, creatorId string, req *CreateReport) (reportId int64, err error)
	GetRecentReports(ctx context.Context, limit int) ([]*model.ReportWithPost, error)
}

type CommentDatabase interface {
	CreateComment(ctx context.Context, req *CreateComment) (commentId int64, err error)
	// GetComments lists a visible post's comments newest-first; lastId 0
	// means first page. Fails with ErrPostNotFound when the post is absent
	// or not visible, so an empty page always means a real post with no
	// comments.
	GetComments(ctx context.Context, postId int64, lastId int64, limit int16) ([]*model.Comment, error)
	// DeleteComment removes one comment. Idempotent: deleting an absent
	// comment affects zero rows.
	DeleteComment(ctx context.Context, id int64) (rowsAffected int64, err error)
}

type UserDatabase interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	AddKarma(ctx context.Context, id string, delta int64) error
	// SetUserBanned returns rows changed (0 when the flag already had the
	// target value). Fails with ErrUserNotFound when the user is absent.
	SetUserBanned(ctx context.Context, id string, banned bool) (rowsAffected int64, err error)
	GetLeaderboard(ctx context.Context, limit int) ([]*model.User, error)
	GetRecentUsers(ctx context.Context, limit int) ([]*model.User, error)
}
