// Package clock abstracts wall time so poll and tick timing is testable.
package clock

import "time"

// Clock supplies the timestamps stamped onto status poll and tick events.
type Clock interface {
	Now() time.Time
}
