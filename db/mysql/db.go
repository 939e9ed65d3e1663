package mysql

import (
	"database/sql"
	"fmt"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/upper/db/v4"
	mysqladapter "github.com/upper/db/v4/adapter/mysql"
)

// Config carries the connection settings and policy knobs the store
// needs. It is built once at process start and injected; nothing in this
// package reads the environment.
type Config struct {
	User     string
	Password string
	Host     string
	Name     string
	// ReportThreshold is the report count at which a visible post is
	// auto-hidden
	ReportThreshold int64
}

type MySQLDB struct {
	*PostDB
	*VoteDB
	*ReportDB
	*CommentDB
	*UserDB
	sess  db.Session
	sqlDB *sql.DB
}

func GetDatabase(cfg *Config) (appDb.Database, error) {
	sqlDB, err := sql.Open("mysql",
		fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Name))
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := mysqladapter.New(sqlDB)
	if err != nil {
		return nil, err
	}

	return &MySQLDB{
		PostDB:    getPostDB(sess),
		VoteDB:    getVoteDB(sess),
		ReportDB:  getReportDB(sess, cfg.ReportThreshold),
		CommentDB: getCommentDB(sess),
		UserDB:    getUserDB(sess),
		sess:      sess,
		sqlDB:     sqlDB,
	}, nil
}

func (mdb *MySQLDB) GetSQLDB() *sql.DB {
	return mdb.sqlDB
}

func (mdb *MySQLDB) Close() error {
	return mdb.sess.Close()
}
