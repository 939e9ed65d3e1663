package mysql

import (
	"context"
	"database/sql"
	"time"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/upper/db/v4"
)

type CommentDB struct {
	sess db.Session
}

func getCommentDB(sess db.Session) *CommentDB {
	return &CommentDB{sess}
}

func (cdb *CommentDB) CreateComment(ctx context.Context, req *appDb.CreateComment) (int64, error) {
	var commentId int64
	err := cdb.sess.TxContext(ctx, func(sess db.Session) error {
		visibility, err := lockPostVisibility(ctx, sess, req.PostId)
		if err != nil {
			return err
		}
		if visibility == nil || *visibility != model.VisibilityVisible {
			return appDb.ErrPostNotFound
		}
		res, err := sess.SQL().
			InsertInto("comment").
			Columns("post_id", "creator_id", "content").
			Values(req.PostId, req.CreatorId, req.Content).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		commentId, err = res.LastInsertId()
		return err
	}, nil)
	return commentId, err
}

type flattenedComment struct {
	Id                 int64     `db:"id"`
	PostId             int64     `db:"post_id"`
	CreatorId          string    `db:"creator_id"`
	CreatorDisplayName string    `db:"display_name"`
	Content            string    `db:"content"`
	CreatedAt          time.Time `db:"created_at"`
}

func (cdb *CommentDB) GetComments(ctx context.Context, postId int64, lastId int64, limit int16) ([]*model.Comment, error) {
	// resolve the post first so an empty page is unambiguous
	row, err := cdb.sess.SQL().QueryRowContext(ctx,
		`SELECT visibility FROM post WHERE id = ?`, postId)
	if err != nil {
		return nil, err
	}
	var visibility model.Visibility
	if err := row.Scan(&visibility); err != nil {
		if err == sql.ErrNoRows {
			return nil, appDb.ErrPostNotFound
		}
		return nil, err
	}
	if visibility != model.VisibilityVisible {
		return nil, appDb.ErrPostNotFound
	}

	sel := cdb.sess.SQL().
		Select("c.id", "c.post_id", "c.creator_id", "person.display_name",
			"c.content", "c.created_at").
		From("comment AS c").
		Join("person").On("c.creator_id = person.firebase_id").
		Where("c.post_id = ?", postId)
	if lastId > 0 {
		sel = sel.And("c.id < ?", lastId)
	}

	var flattenedComments []flattenedComment
	if err := sel.
		OrderBy("c.id DESC").
		Limit(int(limit)).
		IteratorContext(ctx).
		All(&flattenedComments); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, len(flattenedComments))
	for i, flattened := range flattenedComments {
		comments[i] = &model.Comment{
			Id:     flattened.Id,
			PostId: flattened.PostId,
			Creator: &model.DisplayableUser{
				Id:          flattened.CreatorId,
				DisplayName: flattened.CreatorDisplayName,
			},
			Content:   flattened.Content,
			CreatedAt: flattened.CreatedAt,
		}
	}
	return comments, nil
}

func (cdb *CommentDB) DeleteComment(ctx context.Context, id int64) (int64, error) {
	res, err := cdb.sess.SQL().
		DeleteFrom("comment").
		Where("id = ?", id).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
