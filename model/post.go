package model

import (
	"time"
)

type Visibility string

const (
	VisibilityVisible Visibility = "VISIBLE"
	VisibilityHidden  Visibility = "HIDDEN"
	VisibilityDeleted Visibility = "DELETED"
)

// ResolveAdminVisibility resolves an admin hide/unhide request against the
// post's current state. ok is false when the post is deleted (terminal);
// changed is false when the post is already in the target state.
func ResolveAdminVisibility(current Visibility, hidden bool) (next Visibility, changed bool, ok bool) {
	if current == VisibilityDeleted {
		return current, false, false
	}
	next = VisibilityVisible
	if hidden {
		next = VisibilityHidden
	}
	return next, next != current, true
}

type Post struct {
	Id         int64            `json:"id"`
	Creator    *DisplayableUser `json:"creator"`
	Content    string           `json:"content"`
	Upvotes    int64            `json:"upvotes"`
	Downvotes  int64            `json:"downvotes"`
	Visibility Visibility       `json:"visibility"`
	// UserVote is the requesting user's own vote, if any
	UserVote     *Vote     `json:"userVote"`
	CommentCount int64     `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Score is the ordering key for the "hot" sort
func (p *Post) Score() int64 {
	return p.Upvotes - p.Downvotes
}

// Divergence is the primary ordering key for the "controversial" sort:
// evenly split posts have divergence 0
func (p *Post) Divergence() int64 {
	diff := p.Upvotes - p.Downvotes
	if diff < 0 {
		return -diff
	}
	return diff
}

func (p *Post) TotalVotes() int64 {
	return p.Upvotes + p.Downvotes
}

type Comment struct {
	Id        int64            `db:"id" json:"id"`
	PostId    int64            `db:"post_id" json:"postId"`
	Creator   *DisplayableUser `db:"-" json:"creator"`
	Content   string           `db:"content" json:"content"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

type Report struct {
	Id        int64     `db:"id" json:"id"`
	PostId    int64     `db:"post_id" json:"postId"`
	CreatorId string    `db:"creator_id" json:"creatorId"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ReportWithPost is the admin review row: the report joined with the
// current content and state of the reported post
type ReportWithPost struct {
	Report         `db:",inline"`
	PostContent    string     `db:"content" json:"postContent"`
	PostVisibility Visibility `db:"visibility" json:"postVisibility"`
}
