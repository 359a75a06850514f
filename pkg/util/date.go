package util

import "time"

// DayStamp formats a time as a YYYY-MM-DD date stamp, used in export filenames.
func DayStamp(t time.Time) string {
    return t.UTC().Format("2006-01-02")
}
