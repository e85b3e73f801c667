package clock

import (
	"time"
)

// Clock is an interface around the time handling functions of the
// standard library. It has been added to aid unit testing, so that
// holdoff and eviction intervals can be tested without sleeping.
type Clock interface {
	// Return the current time of day. Equivalent to time.Now().
	Now() time.Time
}
