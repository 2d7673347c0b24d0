package chrono

import (
	"fmt"
	"time"
)

// API is the clock every time-dependent component reads from.
type API interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reports the wall clock in the game's home timezone.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() (StandardImpl, error) {
	location, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always reports the same instant.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}

// TimeLeft renders the absolute distance between two instants as "<d>d <h>h <m>m".
func TimeLeft(from, to time.Time) string {
	diff := to.Sub(from)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))
	diff -= time.Duration(days) * 24 * time.Hour
	hours := int(diff / time.Hour)
	diff -= time.Duration(hours) * time.Hour
	minutes := int(diff / time.Minute)
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
