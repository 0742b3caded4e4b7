package domain

import "time"

// Timestamps are kept at microsecond precision so they survive a round trip
// through Postgres unchanged.
const timestampPrecision = time.Microsecond

func Now() time.Time {
	return time.Now().UTC().Truncate(timestampPrecision)
}

// NextTimestamp returns max(now, prev+1µs), so successive stamps on the same
// record strictly increase even when the clock stalls or steps back.
func NextTimestamp(prev time.Time) time.Time {
	now := Now()
	floor := prev.UTC().Truncate(timestampPrecision).Add(timestampPrecision)
	if now.Before(floor) {
		return floor
	}
	return now
}
