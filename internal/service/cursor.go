package service

import (
	"strconv"
	"strings"
	"time"
)

// Cursors are "<unix nanos>_<id>" of the last row of the previous page.
func encodeCursor(t time.Time, id string) string {
	return strconv.FormatInt(t.UnixNano(), 10) + "_" + id
}

func decodeCursor(s string) (time.Time, string, error) {
	if s == "" {
		return time.Time{}, "", nil
	}
	ts, id, ok := strings.Cut(s, "_")
	if !ok || id == "" {
		return time.Time{}, "", invalid("Cursor inválido.")
	}
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, "", invalid("Cursor inválido.")
	}
	return time.Unix(0, n).UTC(), id, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
