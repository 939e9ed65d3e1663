package mysql

import (
	"context"
	"database/sql"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/upper/db/v4"
)

type ReportDB struct {
	sess      db.Session
	threshold int64
}

func getReportDB(sess db.Session, threshold int64) *ReportDB {
	return &ReportDB{sess: sess, threshold: threshold}
}

// CreateReport inserts the report and runs the threshold check inside the
// same transaction, with the post row locked. Two concurrent reports that
// both cross the threshold serialize on the lock; the second observes
// HIDDEN and leaves it alone.
func (rdb *ReportDB) CreateReport(ctx context.Context, creatorId string, req *appDb.CreateReport) (int64, error) {
	var reportId int64
	err := rdb.sess.TxContext(ctx, func(sess db.Session) error {
		visibility, err := lockPostVisibility(ctx, sess, req.PostId)
		if err != nil {
			return err
		}
		if visibility == nil || *visibility == model.VisibilityDeleted {
			return appDb.ErrPostNotFound
		}

		res, err := sess.SQL().
			InsertInto("report").
			Columns("post_id", "creator_id", "reason").
			Values(req.PostId, creatorId, req.Reason).
			ExecContext(ctx)
		if err != nil {
			if appDb.IsDupKeyErr(err) {
				return appDb.ErrAlreadyReported
			}
			return err
		}
		if reportId, err = res.LastInsertId(); err != nil {
			return err
		}

		row, err := sess.SQL().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM report WHERE post_id = ?`, req.PostId)
		if err != nil {
			return err
		}
		var count int64
		if err := row.Scan(&count); err != nil {
			return err
		}
		if count >= rdb.threshold && *visibility == model.VisibilityVisible {
			_, err = sess.SQL().
				Update("post").
				Set("visibility", model.VisibilityHidden).
				Where("id = ?", req.PostId).
				ExecContext(ctx)
			return err
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return reportId, err
}

func (rdb *ReportDB) GetRecentReports(ctx context.Context, limit int) ([]*model.ReportWithPost, error) {
	var reports []*model.ReportWithPost
	if err := rdb.sess.SQL().
		Select("r.id", "r.post_id", "r.creator_id", "r.reason", "r.created_at",
			"p.content", "p.visibility").
		From("report AS r").
		Join("post AS p").On("p.id = r.post_id").
		OrderBy("r.created_at DESC", "r.id DESC").
		Limit(limit).
		IteratorContext(ctx).
		All(&reports); err != nil {
		return nil, err
	}
	return reports, nil
}
