package clock

import "time"

// Clock supplies the current date and time for date-sensitive operations.
// Every service that resolves default dates or sweeps expired rows takes a
// Clock so its behavior is deterministic in tests.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Today() time.Time { return DateOf(time.Now().UTC()) }

// System returns a clock backed by the wall clock in UTC.
func System() Clock {
	return systemClock{}
}

type fixedClock struct {
	at time.Time
}

func (f fixedClock) Now() time.Time { return f.at }

func (f fixedClock) Today() time.Time { return DateOf(f.at) }

// Fixed returns a clock pinned to the given instant.
func Fixed(at time.Time) Clock {
	return fixedClock{at: at.UTC()}
}

// DateOf truncates a timestamp to midnight UTC. All membership and payment
// dates are stored in this normalized form so equality and range queries
// behave the same on MySQL DATE columns and the SQLite test database.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
