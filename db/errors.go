package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrPostNotFound covers both absent posts and posts whose state hides
	// them from the caller
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyReported: one report per (user, post)
	ErrAlreadyReported = errors.New("post already reported by user")
	// ErrInvalidTransition: the requested visibility change is not legal
	// from the post's current state (deleted is terminal)
	ErrInvalidTransition = errors.New("invalid visibility transition")
)

func IsDupKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return strings.Contains(mysqlErr.Error(), "Duplicate")
	}
	return false
}
