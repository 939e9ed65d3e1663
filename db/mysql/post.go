package mysql

import (
	"context"
	"database/sql"
	"time"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

func getPostDB(sess db.Session) *PostDB {
	return &PostDB{sess}
}

type flattenedPost struct {
	Id                 int64            `db:"id"`
	CreatorId          string           `db:"creator_id"`
	CreatorDisplayName string           `db:"display_name"`
	Content            string           `db:"content"`
	Upvotes            int64            `db:"upvotes"`
	Downvotes          int64            `db:"downvotes"`
	Visibility         model.Visibility `db:"visibility"`
	CommentCount       int64            `db:"comment_count"`
	UserVoteDirection  sql.NullString   `db:"direction"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

var postColumns = []interface{}{
	"p.id",
	"p.creator_id",
	"person.display_name",
	"p.content",
	"p.upvotes",
	"p.downvotes",
	"p.visibility",
	"p.created_at",
	"p.updated_at",
	db.Raw("(SELECT COUNT(1) FROM comment AS cc WHERE cc.post_id = p.id) AS comment_count"),
}

var voteColumns = []interface{}{
	"v.direction",
}

func (pdb *PostDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (int64, error) {
	var postId int64
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		res, err := sess.SQL().
			InsertInto("post").
			Columns("creator_id", "content", "visibility").
			Values(req.CreatorId, req.Content, model.VisibilityVisible).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		postId, err = res.LastInsertId()
		if err != nil {
			return err
		}

		// posting credit; votes never touch karma
		_, err = sess.SQL().
			Update("person").
			Set("karma = karma + ?", appDb.KarmaPerPost).
			Where("firebase_id = ?", req.CreatorId).
			ExecContext(ctx)
		return err
	}, nil)
	return postId, err
}

func (pdb *PostDB) GetPostById(ctx context.Context, id int64, opts *appDb.PostQueryOpts) (*model.Post, error) {
	sel := pdb.sess.SQL().
		Select(append(postColumns, voteColumns...)...).
		From("post AS p").
		Join("person").On("p.creator_id = person.firebase_id").
		// TODO: This can be optimized: don't join if VoteHistoryOf empty
		LeftJoin("vote AS v").On("v.voter_id = ? AND v.post_id = p.id", opts.VoteHistoryOf).
		Where("p.id = ?", id)
	if opts.IncludeHidden {
		sel = sel.And("p.visibility != ?", model.VisibilityDeleted)
	} else {
		sel = sel.And("p.visibility = ?", model.VisibilityVisible)
	}

	var post flattenedPost
	if err := sel.IteratorContext(ctx).One(&post); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildPostFromFlattened(&post), nil
}

func (pdb *PostDB) GetFeedPosts(ctx context.Context, query *appDb.FeedQuery) ([]*model.Post, error) {
	sel := pdb.sess.SQL().
		Select(append(postColumns, voteColumns...)...).
		From("post AS p").
		Join("person").On("p.creator_id = person.firebase_id").
		LeftJoin("vote AS v").On("v.voter_id = ? AND v.post_id = p.id", query.VoteHistoryOf).
		Where("p.visibility = ?", model.VisibilityVisible)
	if query.Sort == model.SortNew && query.LastId > 0 {
		// strict: pages anchored to an id never shift under concurrent
		// inserts
		sel = sel.And("p.id < ?", query.LastId)
	}
	sel = sel.OrderBy(orderByColumns(query.Sort)...).
		Limit(int(query.Limit))
	if query.Sort != model.SortNew && query.Offset > 0 {
		sel = sel.Offset(query.Offset)
	}

	var flattenedPosts []flattenedPost
	if err := sel.IteratorContext(ctx).All(&flattenedPosts); err != nil {
		return nil, err
	}
	posts := make([]*model.Post, len(flattenedPosts))
	for i := range flattenedPosts {
		posts[i] = buildPostFromFlattened(&flattenedPosts[i])
	}
	return posts, nil
}

// orderByColumns maps a sort mode to its ordering key. Every mode ends on
// p.id DESC so the order is total.
func orderByColumns(sort model.SortMode) []interface{} {
	switch sort {
	case model.SortHot:
		return []interface{}{
			db.Raw("(p.upvotes - p.downvotes) DESC"),
			"p.created_at DESC",
			"p.id DESC",
		}
	case model.SortControversial:
		return []interface{}{
			db.Raw("ABS(p.upvotes - p.downvotes) ASC"),
			db.Raw("(p.upvotes + p.downvotes) DESC"),
			"p.id DESC",
		}
	default:
		return []interface{}{"p.created_at DESC", "p.id DESC"}
	}
}

func buildPostFromFlattened(post *flattenedPost) *model.Post {
	var vote *model.Vote
	if post.UserVoteDirection.Valid {
		vote = &model.Vote{Direction: model.Direction(post.UserVoteDirection.String)}
	}
	return &model.Post{
		Id: post.Id,
		Creator: &model.DisplayableUser{
			Id:          post.CreatorId,
			DisplayName: post.CreatorDisplayName,
		},
		Content:      post.Content,
		Upvotes:      post.Upvotes,
		Downvotes:    post.Downvotes,
		Visibility:   post.Visibility,
		UserVote:     vote,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

func (pdb *PostDB) SetPostHidden(ctx context.Context, id int64, hidden bool) (int64, error) {
	var rowsAffected int64
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		current, err := lockPostVisibility(ctx, sess, id)
		if err != nil {
			return err
		}
		if current == nil {
			return appDb.ErrPostNotFound
		}
		next, changed, ok := model.ResolveAdminVisibility(*current, hidden)
		if !ok {
			return appDb.ErrInvalidTransition
		}
		if !changed {
			return nil
		}
		if _, err := sess.SQL().
			Update("post").
			Set("visibility", next).
			Where("id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		rowsAffected = 1
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return rowsAffected, err
}

func (pdb *PostDB) DeletePost(ctx context.Context, id int64) (int64, error) {
	var rowsAffected int64
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		current, err := lockPostVisibility(ctx, sess, id)
		if err != nil {
			return err
		}
		if current == nil || *current == model.VisibilityDeleted {
			// deletion is idempotent: absent and already-deleted posts
			// report zero rows, not an error
			return nil
		}
		for _, dependent := range []string{"comment", "report", "vote"} {
			if _, err := sess.SQL().
				DeleteFrom(dependent).
				Where("post_id = ?", id).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		if _, err := sess.SQL().
			Update("post").
			Set("visibility = ?, content = '', upvotes = 0, downvotes = 0", model.VisibilityDeleted).
			Where("id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		rowsAffected = 1
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return rowsAffected, err
}

// lockPostVisibility takes the post's row lock for the remainder of the
// transaction. Returns nil when the post does not exist.
func lockPostVisibility(ctx context.Context, sess db.Session, id int64) (*model.Visibility, error) {
	row, err := sess.SQL().QueryRowContext(ctx,
		`SELECT visibility FROM post WHERE id = ? FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	var visibility model.Visibility
	if err := row.Scan(&visibility); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &visibility, nil
}
