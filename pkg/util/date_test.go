package util

import (
    "testing"
    "time"
)

func TestDayStamp(t *testing.T) {
    ts := time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC)
    if got := DayStamp(ts); got != "2024-10-10" {
        t.Fatalf("unexpected stamp %q", got)
    }
}

func TestDayStampConvertsToUTC(t *testing.T) {
    loc := time.FixedZone("UTC+9", 9*3600)
    ts := time.Date(2024, 10, 11, 1, 0, 0, 0, loc)
    if got := DayStamp(ts); got != "2024-10-10" {
        t.Fatalf("unexpected stamp %q", got)
    }
}
