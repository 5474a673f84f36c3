package domain

import (
	"fmt"
	"time"
)

// Duration is a track length that may be unknown (live streams, unresolved queue entries).
// The zero value is an unknown duration.
type Duration struct {
	value time.Duration
	known bool
}

// KnownDuration returns a known duration. Negative values are clamped to zero.
func KnownDuration(d time.Duration) Duration {
	return Duration{value: max(d, 0), known: true}
}

// DurationSeconds returns a known duration of the given whole seconds.
func DurationSeconds(seconds int) Duration {
	return KnownDuration(time.Duration(seconds) * time.Second)
}

// UnknownDuration returns a duration that has not been determined.
func UnknownDuration() Duration {
	return Duration{}
}

// IsKnown reports whether the duration has been determined.
func (d Duration) IsKnown() bool {
	return d.known
}

// Value returns the duration, or zero when it is unknown.
func (d Duration) Value() time.Duration {
	if !d.known {
		return 0
	}
	return d.value
}

// String formats the duration with FormatDuration. Unknown durations render as "0:00".
func (d Duration) String() string {
	return FormatDuration(d.Value())
}

// FormatDuration formats d as H:MM:SS when it is at least one hour, otherwise M:SS.
// Sub-second remainders are truncated.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total <= 0 {
		return "0:00"
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
