package types

import "time"

// filetimeEpochOffset is the number of 100ns intervals between the Windows
// FILETIME epoch (1601-01-01 00:00:00 UTC) and the Unix epoch
// (1970-01-01 00:00:00 UTC).
const filetimeEpochOffset = 116444736000000000

// FiletimeToTime converts a Windows FILETIME (100ns intervals since
// 1601-01-01 UTC), as stored in the FVE metadata header's creation/last-
// modified fields, to a time.Time in UTC.
func FiletimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	unixInterval := int64(ft) - filetimeEpochOffset
	sec := unixInterval / 10000000
	nsec := (unixInterval % 10000000) * 100
	return time.Unix(sec, nsec).UTC()
}

// TimeToFiletime converts a time.Time to a Windows FILETIME value. Provided
// for test fixtures that need to round-trip a known timestamp.
func TimeToFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	u := t.UTC()
	unixInterval := u.Unix()*10000000 + int64(u.Nanosecond())/100
	return uint64(unixInterval + filetimeEpochOffset)
}
