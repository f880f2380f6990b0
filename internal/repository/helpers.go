package repository

import (
	"database/sql"
	"time"
)

// timeLayout is a fixed-width UTC timestamp so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dateLayout is used for calendar dates (invoice and due dates)
const dateLayout = "2006-01-02"

// parseTime parses a timestamp written with timeLayout
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime formats t in UTC with timeLayout
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}
