// Package clock abstracts the current instant and timer scheduling so that
// date comparisons, timestamps and booking delays can be driven in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wall struct {
	loc *time.Location
}

// Real returns the wall clock reading in loc. A nil loc means time.Local.
func Real(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return wall{loc: loc}
}

func (w wall) Now() time.Time { return time.Now().In(w.loc) }

func (wall) After(d time.Duration) <-chan time.Time { return time.After(d) }

type fixed struct {
	now time.Time
}

// Fixed always reports now. Timers still fire after real durations.
func Fixed(now time.Time) Clock {
	return fixed{now: now}
}

func (f fixed) Now() time.Time { return f.now }

func (fixed) After(d time.Duration) <-chan time.Time { return time.After(d) }
