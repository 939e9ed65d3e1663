package util

import (
	"strconv"
	"time"
)

func ParseId(raw string) (int64, *HTTPError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, MalformedIdHTTPErr
	}
	return id, nil
}

func ParseTime(val string) (time.Time, error) {
	return time.Parse(time.RFC3339, val)
}
