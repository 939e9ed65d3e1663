package mysql

import (
	"context"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/upper/db/v4"
)

type UserDB struct {
	sess db.Session
}

func getUserDB(sess db.Session) *UserDB {
	return &UserDB{sess}
}

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := udb.sess.SQL().
		InsertInto("person").
		Columns("firebase_id", "display_name").
		Values(user.Id, user.DisplayName).
		ExecContext(ctx)
	return err
}

func (udb *UserDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		Where("firebase_id = ?", id).
		IteratorContext(ctx).
		One(&user); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (udb *UserDB) AddKarma(ctx context.Context, id string, delta int64) error {
	_, err := udb.sess.SQL().
		Update("person").
		Set("karma = karma + ?", delta).
		Where("firebase_id = ?", id).
		ExecContext(ctx)
	return err
}

func (udb *UserDB) SetUserBanned(ctx context.Context, id string, banned bool) (int64, error) {
	res, err := udb.sess.SQL().
		Update("person").
		Set("is_banned", banned).
		Where("firebase_id = ?", id).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rowsAffected == 0 {
		// zero rows is either a no-op flip or a missing user
		user, err := udb.GetUser(ctx, id)
		if err != nil {
			return 0, err
		}
		if user == nil {
			return 0, appDb.ErrUserNotFound
		}
	}
	return rowsAffected, nil
}

func (udb *UserDB) GetLeaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	var users []*model.User
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		Where("is_banned = ?", false).
		OrderBy("karma DESC", "firebase_id ASC").
		Limit(limit).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, err
	}
	return users, nil
}

func (udb *UserDB) GetRecentUsers(ctx context.Context, limit int) ([]*model.User, error) {
	var users []*model.User
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		OrderBy("created_at DESC", "firebase_id ASC").
		Limit(limit).
		IteratorContext(ctx).
		All(&users); err != nil {
		return nil, err
	}
	return users, nil
}
