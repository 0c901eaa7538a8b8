package quant

import (
	"fmt"
	"sync/atomic"
	"time"
)

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

// MakeTimeStamp builds a TimeStamp from raw microseconds since epoch.
func MakeTimeStamp(micros int64) TimeStamp {
	return TimeStamp(micros)
}

// FromTime converts a time.Time to a TimeStamp.
// Note: Only used at the boundary. Internal logic passes TimeStamp directly.
func FromTime(t time.Time) TimeStamp {
	return TimeStamp(t.UnixMicro())
}

// Time converts the TimeStamp back to a time.Time in UTC.
func (t TimeStamp) Time() time.Time {
	return time.UnixMicro(int64(t)).UTC()
}

func (t TimeStamp) String() string {
	return fmt.Sprintf("%dus", int64(t))
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}
