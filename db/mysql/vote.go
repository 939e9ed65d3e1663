package mysql

import (
	"context"
	"database/sql"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/upper/db/v4"
)

type VoteDB struct {
	sess db.Session
}

func getVoteDB(sess db.Session) *VoteDB {
	return &VoteDB{sess}
}

// CastVote runs the whole read-resolve-write sequence in one transaction.
// The post row is locked first, which both rejects votes on non-visible
// posts and serializes concurrent casts per post; the voter's own vote
// row is locked so two casts by the same user cannot double-apply.
// Tallies only ever move by relative increments.
func (vdb *VoteDB) CastVote(ctx context.Context, voterId string, postId int64, direction model.Direction) (model.CastOutcome, error) {
	var outcome model.CastOutcome
	err := vdb.sess.TxContext(ctx, func(sess db.Session) error {
		visibility, err := lockPostVisibility(ctx, sess, postId)
		if err != nil {
			return err
		}
		if visibility == nil || *visibility != model.VisibilityVisible {
			return appDb.ErrPostNotFound
		}

		row, err := sess.SQL().QueryRowContext(ctx,
			`SELECT direction FROM vote
				WHERE post_id = ? AND voter_id = ?
			FOR UPDATE`,
			postId, voterId)
		if err != nil {
			return err
		}
		var previous *model.Direction
		var previousRaw string
		if err := row.Scan(&previousRaw); err != nil {
			if err != sql.ErrNoRows {
				return err
			}
		} else {
			prev := model.Direction(previousRaw)
			previous = &prev
		}

		var delta model.TallyDelta
		outcome, delta = model.ResolveCast(previous, direction)

		switch outcome {
		case model.CastRecorded:
			if _, err := sess.SQL().
				InsertInto("vote").
				Columns("post_id", "voter_id", "direction").
				Values(postId, voterId, direction).
				ExecContext(ctx); err != nil {
				return err
			}
		case model.CastCancelled:
			if _, err := sess.SQL().
				DeleteFrom("vote").
				Where("post_id = ? AND voter_id = ?", postId, voterId).
				ExecContext(ctx); err != nil {
				return err
			}
		case model.CastChanged:
			if _, err := sess.SQL().
				Update("vote").
				Set("direction", direction).
				Where("post_id = ? AND voter_id = ?", postId, voterId).
				ExecContext(ctx); err != nil {
				return err
			}
		}

		_, err = sess.SQL().
			Update("post").
			Set("upvotes = upvotes + ?, downvotes = downvotes + ?", delta.Up, delta.Down).
			Where("id = ?", postId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
